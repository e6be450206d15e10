// Package sigma runs the three-move commit/challenge/response protocol and
// its non-interactive Fiat-Shamir transform. Provers in this module build on
// Commit, Challenge and Response; the Transcript record is the standalone
// re-checkable form.
package sigma

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
)

// ErrNonceConsumed is returned when a nonce is fed into Response twice.
// Reusing a nonce across two proofs for the same secret leaks the secret, so
// the type enforces single use.
var ErrNonceConsumed = fmt.Errorf("sigma nonce already consumed")

// Nonce is the single-use secret k behind a commitment.
type Nonce struct {
	k        *big.Int
	consumed bool
}

// Commit draws a fresh nonce k and returns it with the commitment A = base^k.
func Commit(g *curve.Group, base curve.Point, r Rand) (*Nonce, curve.Point, error) {
	k, err := r.Scalar(g)
	if err != nil {
		return nil, curve.Point{}, err
	}
	a, err := g.ScalarMult(base, k)
	if err != nil {
		return nil, curve.Point{}, err
	}
	return &Nonce{k: k}, a, nil
}

// Challenge derives c = H(parts...) mod n. Each part is length-prefixed
// before hashing so distinct part vectors can never collide as hash input.
// Callers must feed the commitment and the full canonical public statement,
// never the commitment alone, so a transcript cannot be replayed against a
// different statement.
func Challenge(h Hasher, algorithm string, order *big.Int, parts ...[]byte) (*big.Int, error) {
	var input []byte
	var prefix [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(prefix[:], uint32(len(p)))
		input = append(input, prefix[:]...)
		input = append(input, p...)
	}
	digest, err := h.Hash(algorithm, input)
	if err != nil {
		return nil, err
	}
	c := new(big.Int).SetBytes(digest)
	return c.Mod(c, order), nil
}

// Response consumes the nonce and returns z = (k + c*secret) mod n.
func Response(n *Nonce, c, secret, order *big.Int) (*big.Int, error) {
	if n == nil || n.consumed {
		return nil, ErrNonceConsumed
	}
	z := new(big.Int).Mul(c, secret)
	z.Add(z, n.k)
	z.Mod(z, order)
	n.consumed = true
	n.k = nil
	return z, nil
}

// ScalarHex renders a scalar for storage in a proof record.
func ScalarHex(s *big.Int) string {
	return s.Text(16)
}

// ParseScalarHex parses a scalar from a proof record; it rejects anything
// that is not a non-negative hex integer.
func ParseScalarHex(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("malformed scalar %q", s)
	}
	return v, nil
}
