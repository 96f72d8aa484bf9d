package search

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/jukebox/internal/core"
)

// Cache methods.
const (
	MethodSearch  = "search"
	MethodGetByID = "getById"
)

type byIDParams struct {
	ID string
}

// Key derives a cache key from the source, method and parameters. The hash
// is independent of map ordering, and slices tagged `hash:"set"` (such as
// licence filters) are order-independent too.
func Key(source core.SourceID, method string, params any) (string, error) {
	h, err := hashstructure.Hash(params, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing %s params: %w", method, err)
	}
	return fmt.Sprintf("%s:%s:%016x", source, method, h), nil
}
