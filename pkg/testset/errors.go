package testset

import (
	"errors"
	"fmt"
)

// ErrNoClusters is returned when neither cluster discovery nor the
// singleton-node fallback yields any usable nodes. The graph has no content
// of the required type; retrying cannot fix that.
var ErrNoClusters = errors.New("no clusters found: run enrichment transforms to populate the graph")

// LengthMismatchError reports desynchronized scenario assembly inputs:
// the flattened (cluster, label) pairs and the sampled attribute sequences
// must all have the same length. This is a programmer error, not a data
// condition; attributes must be sampled after flattening.
type LengthMismatchError struct {
	Pairs   int
	Styles  int
	Lengths int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf(
		"scenario assembly length mismatch: %d pairs, %d styles, %d lengths",
		e.Pairs, e.Styles, e.Lengths,
	)
}
