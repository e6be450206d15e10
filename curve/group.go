package curve

import (
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
)

// ErrDegradedArithmetic marks results computed by the non-curve-aware
// fallback. A point returned together with this error keeps a caller alive
// but must never be treated as sound curve math.
var ErrDegradedArithmetic = fmt.Errorf("degraded arithmetic: no curve backend")

// Group is the arithmetic surface over one registered curve. All scalar
// inputs are reduced modulo the group order before use.
type Group struct {
	params *Params
	impl   elliptic.Curve
}

// NewGroup builds the arithmetic group for a registered curve. Unknown names
// fail with ErrUnknownCurve.
func NewGroup(name string) (*Group, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
	}
	return &Group{params: e.params, impl: e.impl}, nil
}

// NewDegradedGroup builds a group with no curve backend. Its operations
// return coordinate-wise modular results together with
// ErrDegradedArithmetic, so the caller can degrade to "refuse to prove"
// instead of crashing.
func NewDegradedGroup(params *Params) *Group {
	return &Group{params: params}
}

// Degraded reports whether the group lacks a vetted curve backend.
func (g *Group) Degraded() bool { return g.impl == nil }

// Name returns the curve name.
func (g *Group) Name() string { return g.params.Name }

// Order returns a copy of the group order n.
func (g *Group) Order() *big.Int { return new(big.Int).Set(g.params.N) }

// Params returns the curve parameters.
func (g *Group) Params() *Params { return g.params }

// Generator returns the registered base point.
func (g *Group) Generator() Point {
	return NewPoint(g.params.Gx, g.params.Gy)
}

func (g *Group) reduce(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, g.params.N)
}

// ScalarMult computes k*p.
func (g *Group) ScalarMult(p Point, k *big.Int) (Point, error) {
	k = g.reduce(k)
	if g.impl == nil {
		// liveness fallback: plain modular multiply on the coordinates
		x := new(big.Int).Mod(new(big.Int).Mul(p.X, k), g.params.P)
		y := new(big.Int).Mod(new(big.Int).Mul(p.Y, k), g.params.P)
		return Point{X: x, Y: y}, ErrDegradedArithmetic
	}
	x, y := g.impl.ScalarMult(p.X, p.Y, k.Bytes())
	return Point{X: x, Y: y}, nil
}

// ScalarBaseMult computes k*G.
func (g *Group) ScalarBaseMult(k *big.Int) (Point, error) {
	return g.ScalarMult(g.Generator(), k)
}

// Add computes p + q.
func (g *Group) Add(p, q Point) (Point, error) {
	if g.impl == nil {
		x := new(big.Int).Mod(new(big.Int).Add(p.X, q.X), g.params.P)
		y := new(big.Int).Mod(new(big.Int).Add(p.Y, q.Y), g.params.P)
		return Point{X: x, Y: y}, ErrDegradedArithmetic
	}
	if p.IsInfinity() {
		return NewPoint(q.X, q.Y), nil
	}
	if q.IsInfinity() {
		return NewPoint(p.X, p.Y), nil
	}
	x, y := g.impl.Add(p.X, p.Y, q.X, q.Y)
	return Point{X: x, Y: y}, nil
}

// Neg returns -p, i.e. (x, P-y).
func (g *Group) Neg(p Point) Point {
	if p.IsInfinity() || p.Y.Sign() == 0 {
		return NewPoint(p.X, p.Y)
	}
	return Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Sub(g.params.P, p.Y)}
}

// IsOnCurve reports whether p satisfies the curve equation.
func (g *Group) IsOnCurve(p Point) bool {
	if g.impl == nil || p.IsInfinity() {
		return false
	}
	return g.impl.IsOnCurve(p.X, p.Y)
}

// PointBytes serializes p as fixed-width big-endian X||Y for hashing.
func (g *Group) PointBytes(p Point) []byte {
	fieldLen := (g.params.P.BitLen() + 7) / 8
	out := make([]byte, 2*fieldLen)
	if !p.IsInfinity() {
		p.X.FillBytes(out[:fieldLen])
		p.Y.FillBytes(out[fieldLen:])
	}
	return out
}

// HashToPoint derives a curve point from a seed by incremental try-and-hash:
// candidate x coordinates come from an expanding SHA-256 stream, and the
// first x with a quadratic-residue y^2 = x^3 + Ax + B wins. Nobody learns a
// discrete log for the result, which is what Pedersen's second generator
// needs.
func (g *Group) HashToPoint(seed []byte) (Point, error) {
	if g.impl == nil {
		return Point{}, ErrDegradedArithmetic
	}
	fieldLen := (g.params.P.BitLen() + 7) / 8
	for ctr := uint32(0); ctr < 1024; ctr++ {
		x := new(big.Int).Mod(expand(seed, ctr, fieldLen), g.params.P)

		// y^2 = x^3 + Ax + B mod P
		rhs := new(big.Int).Exp(x, big.NewInt(3), g.params.P)
		ax := new(big.Int).Mul(g.params.A, x)
		rhs.Add(rhs, ax)
		rhs.Add(rhs, g.params.B)
		rhs.Mod(rhs, g.params.P)

		y := new(big.Int).ModSqrt(rhs, g.params.P)
		if y == nil {
			continue
		}
		p := Point{X: x, Y: y}
		if g.impl.IsOnCurve(p.X, p.Y) {
			return p, nil
		}
	}
	return Point{}, fmt.Errorf("hash-to-point failed for curve %s", g.params.Name)
}

// expand stretches seed||ctr into at least byteLen bytes of digest material.
func expand(seed []byte, ctr uint32, byteLen int) *big.Int {
	var buf []byte
	for block := uint32(0); len(buf) < byteLen; block++ {
		h := sha256.New()
		h.Write(seed)
		var suffix [8]byte
		binary.BigEndian.PutUint32(suffix[:4], ctr)
		binary.BigEndian.PutUint32(suffix[4:], block)
		h.Write(suffix[:])
		buf = h.Sum(buf)
	}
	return new(big.Int).SetBytes(buf[:byteLen])
}
