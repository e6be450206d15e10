// Package pedersen implements proofs about Pedersen commitments
// C = g^m h^r: opening proofs, bitwise range proofs, and disjunctive
// set-membership proofs.
package pedersen

import (
	"fmt"
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
)

// Params fixes the two generators for one curve. g is the registry base
// point; h is derived by try-and-hash so that no party knows log_g(h), which
// is what makes the commitment binding.
type Params struct {
	Group *curve.Group
	G     curve.Point
	H     curve.Point
}

// ErrValueOutOfRange is returned at generation time when a value does not fit
// the claimed range. A proof is never produced for a false range statement.
var ErrValueOutOfRange = fmt.Errorf("value outside claimed range")

// ErrNotInSet is returned at generation time when the committed value is not
// a member of the public set. A proof is never produced for a false
// membership statement.
var ErrNotInSet = fmt.Errorf("value not in set")

// Setup derives the generator pair for the group.
func Setup(g *curve.Group) (*Params, error) {
	h, err := g.HashToPoint([]byte(g.Name() + "/pedersen/h/v1"))
	if err != nil {
		return nil, fmt.Errorf("deriving second generator: %w", err)
	}
	return &Params{Group: g, G: g.Generator(), H: h}, nil
}

// Commit computes C = g^m h^r.
func (p *Params) Commit(m, r *big.Int) (curve.Point, error) {
	gm, err := p.Group.ScalarMult(p.G, m)
	if err != nil {
		return curve.Point{}, err
	}
	hr, err := p.Group.ScalarMult(p.H, r)
	if err != nil {
		return curve.Point{}, err
	}
	return p.Group.Add(gm, hr)
}

// matches reports whether the proof-embedded generators are the canonical
// pair for this parameter set. Accepting arbitrary generators from the proof
// record would let a prover pick an h with known discrete log.
func (p *Params) matches(g, h curve.Point) bool {
	return p.G.Equal(g) && p.H.Equal(h)
}
