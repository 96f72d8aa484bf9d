package history

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/tessro/jukebox/internal/store"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello   World  ", "Hello World"},
		{"lofi\tbeats\n", "lofi beats"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueriesAdd(t *testing.T) {
	q := NewQueries(store.NewMemoryStore(), zaptest.NewLogger(t), nil)

	q.Add("  Hello   World  ")
	if got := q.Entries(); !reflect.DeepEqual(got, []string{"Hello World"}) {
		t.Fatalf("Entries() = %v", got)
	}

	q.Add("hello world")
	if got := q.Entries(); !reflect.DeepEqual(got, []string{"hello world"}) {
		t.Errorf("Entries() = %v, want [hello world]", got)
	}
}

func TestQueriesAddCaseFolding(t *testing.T) {
	q := NewQueries(store.NewMemoryStore(), zaptest.NewLogger(t), nil)
	q.Add("ÉCOLE DE MUSIQUE")
	q.Add("école de musique")
	if got := q.Entries(); !reflect.DeepEqual(got, []string{"école de musique"}) {
		t.Errorf("Entries() = %v, want [école de musique]", got)
	}
}

func TestQueriesCapAndOrder(t *testing.T) {
	q := NewQueries(store.NewMemoryStore(), zaptest.NewLogger(t), nil)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		q.Add(s)
	}
	if got, want := q.Entries(), []string{"e", "d", "c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	q.Add("C")
	if got, want := q.Entries(), []string{"C", "e", "d", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestQueriesEmptyIsNoop(t *testing.T) {
	s := store.NewMemoryStore()
	q := NewQueries(s, zaptest.NewLogger(t), nil)
	q.Add("   ")
	if len(q.Entries()) != 0 {
		t.Error("blank query should be ignored")
	}
	if _, ok, _ := s.Get(store.KeySearchHistory); ok {
		t.Error("blank query should not persist")
	}
}

func TestQueriesLoad(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Set(store.KeySearchHistory, `["one","two","three","four","five"]`)

	q := NewQueries(s, zaptest.NewLogger(t), nil)
	q.Load()
	if got, want := q.Entries(), []string{"one", "two", "three", "four"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	q.Add("six")
	reloaded := NewQueries(s, zaptest.NewLogger(t), nil)
	reloaded.Load()
	if got, want := reloaded.Entries(), []string{"six", "one", "two", "three"}; !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}
}

func TestQueriesLoadNormalizes(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []string
	}{
		{"whitespace", `["  lo   fi  ", "rain"]`, []string{"lo fi", "rain"}},
		{"case duplicates keep newest", `["Jazz", "jazz", "JAZZ ", "piano"]`, []string{"Jazz", "piano"}},
		{"blank entries dropped", `["", "   ", "a"]`, []string{"a"}},
		{"cap after dedupe", `["a", "A", "b", "c", "d", "e"]`, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			_ = s.Set(store.KeySearchHistory, tt.stored)
			q := NewQueries(s, zaptest.NewLogger(t), nil)
			q.Load()
			if got := q.Entries(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Entries() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueriesLoadMalformed(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Set(store.KeySearchHistory, `"not a list"`)
	q := NewQueries(s, zaptest.NewLogger(t), nil)
	q.Load()
	if len(q.Entries()) != 0 {
		t.Errorf("Entries() = %v, want empty", q.Entries())
	}
}

func TestQueriesStoreFailure(t *testing.T) {
	q := NewQueries(failingStore{}, zaptest.NewLogger(t), nil)
	q.Load()
	q.Add("still works")
	if got := q.Entries(); !reflect.DeepEqual(got, []string{"still works"}) {
		t.Errorf("Entries() = %v", got)
	}
}
