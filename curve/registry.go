package curve

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Params holds the domain parameters of a supported curve: the field prime P,
// the group order N, the short-Weierstrass coefficients A and B, and the
// generator (Gx, Gy).
type Params struct {
	Name    string
	P       *big.Int
	N       *big.Int
	A       *big.Int
	B       *big.Int
	Gx      *big.Int
	Gy      *big.Int
	BitSize int
}

// ErrUnknownCurve is returned when a curve name has no registry entry.
// Configuration must fail on it rather than substitute a default curve.
var ErrUnknownCurve = fmt.Errorf("unknown curve")

var registry = map[string]*entry{}

type entry struct {
	params *Params
	impl   elliptic.Curve
}

func register(name string, impl elliptic.Curve, a *big.Int) {
	cp := impl.Params()
	registry[name] = &entry{
		params: &Params{
			Name:    name,
			P:       cp.P,
			N:       cp.N,
			A:       a,
			B:       cp.B,
			Gx:      cp.Gx,
			Gy:      cp.Gy,
			BitSize: cp.BitSize,
		},
		impl: impl,
	}
}

func init() {
	// secp256k1: y^2 = x^3 + 7
	register("secp256k1", btcec.S256(), big.NewInt(0))
	// NIST curves: y^2 = x^3 - 3x + b
	for _, c := range []elliptic.Curve{elliptic.P256(), elliptic.P384(), elliptic.P521()} {
		cp := c.Params()
		a := new(big.Int).Sub(cp.P, big.NewInt(3))
		register(cp.Name, c, a)
	}
}

// Lookup returns the registered parameters for name.
func Lookup(name string) (*Params, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
	return e.params, nil
}

// Names returns the registered curve names in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SecurityLevel returns the symmetric-equivalent security of the curve in
// bits (half the group size).
func (p *Params) SecurityLevel() int {
	return p.BitSize / 2
}
