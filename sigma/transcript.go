package sigma

import (
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
)

// Transcript is the packaged Fiat-Shamir record (A, c, z) for knowledge of
// the exponent x with PublicValue = Generator^x. It carries only public
// values and can be re-checked on its own.
type Transcript struct {
	Commitment    curve.Point `json:"commitment"`
	Challenge     string      `json:"challenge"`
	Response      string      `json:"response"`
	Generator     curve.Point `json:"generator"`
	PublicValue   curve.Point `json:"publicValue"`
	Curve         string      `json:"curve"`
	HashAlgorithm string      `json:"hashAlgorithm"`
}

// Prove runs the full non-interactive protocol: commit, derive the challenge
// over the commitment plus statement, respond.
func Prove(g *curve.Group, base curve.Point, secret *big.Int, statement []byte, r Rand, h Hasher, algorithm string) (*Transcript, error) {
	public, err := g.ScalarMult(base, secret)
	if err != nil {
		return nil, err
	}
	nonce, commitment, err := Commit(g, base, r)
	if err != nil {
		return nil, err
	}
	c, err := Challenge(h, algorithm, g.Order(),
		g.PointBytes(commitment), g.PointBytes(base), g.PointBytes(public), statement)
	if err != nil {
		return nil, err
	}
	z, err := Response(nonce, c, secret, g.Order())
	if err != nil {
		return nil, err
	}
	return &Transcript{
		Commitment:    commitment,
		Challenge:     ScalarHex(c),
		Response:      ScalarHex(z),
		Generator:     base,
		PublicValue:   public,
		Curve:         g.Name(),
		HashAlgorithm: algorithm,
	}, nil
}

// Verify re-derives the challenge and checks base^z == A + c*Y. Malformed
// records yield (false, reason), never an error.
func (t *Transcript) Verify(g *curve.Group, h Hasher, statement []byte) (bool, string) {
	c, err := ParseScalarHex(t.Challenge)
	if err != nil {
		return false, "malformed challenge"
	}
	z, err := ParseScalarHex(t.Response)
	if err != nil {
		return false, "malformed response"
	}
	if !g.IsOnCurve(t.Generator) || !g.IsOnCurve(t.PublicValue) || !g.IsOnCurve(t.Commitment) {
		return false, "point not on curve"
	}
	expected, err := Challenge(h, t.HashAlgorithm, g.Order(),
		g.PointBytes(t.Commitment), g.PointBytes(t.Generator), g.PointBytes(t.PublicValue), statement)
	if err != nil {
		return false, "challenge derivation failed"
	}
	if expected.Cmp(c) != 0 {
		return false, "challenge mismatch"
	}
	left, err := g.ScalarMult(t.Generator, z)
	if err != nil {
		return false, "degraded arithmetic"
	}
	cy, err := g.ScalarMult(t.PublicValue, c)
	if err != nil {
		return false, "degraded arithmetic"
	}
	right, err := g.Add(t.Commitment, cy)
	if err != nil {
		return false, "degraded arithmetic"
	}
	if !left.Equal(right) {
		return false, "response equation failed"
	}
	return true, ""
}
