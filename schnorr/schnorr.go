// Package schnorr issues and checks non-interactive discrete-log knowledge
// proofs: given public (g, y) with y = g^x, the prover shows it knows x
// without revealing it.
package schnorr

import (
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

// Proof holds the public transcript of one discrete-log proof. Points and
// scalars are hex-encoded; no secret material ever enters this record.
type Proof struct {
	Commitment    curve.Point `json:"commitment"`
	Challenge     string      `json:"challenge"`
	Response      string      `json:"response"`
	PublicKey     curve.Point `json:"publicKey"`
	Generator     curve.Point `json:"generator"`
	Curve         string      `json:"curve"`
	Order         string      `json:"order"`
	HashAlgorithm string      `json:"hashAlgorithm"`
}

// Prover binds a group to the randomness and hash collaborators.
type Prover struct {
	group  *curve.Group
	rand   sigma.Rand
	hasher sigma.Hasher
	alg    string
}

func NewProver(g *curve.Group, r sigma.Rand, h sigma.Hasher, algorithm string) *Prover {
	return &Prover{group: g, rand: r, hasher: h, alg: algorithm}
}

// Prove generates a proof of knowledge of secret x for y = g^x over the
// registry generator. The statement bytes are the canonical public statement
// and are bound into the challenge.
func (p *Prover) Prove(secret *big.Int, statement []byte) (*Proof, error) {
	return p.ProveWithGenerator(p.group.Generator(), secret, statement)
}

// ProveWithGenerator is Prove against an explicit generator point.
func (p *Prover) ProveWithGenerator(gen curve.Point, secret *big.Int, statement []byte) (*Proof, error) {
	y, err := p.group.ScalarMult(gen, secret)
	if err != nil {
		return nil, err
	}
	nonce, r, err := sigma.Commit(p.group, gen, p.rand)
	if err != nil {
		return nil, err
	}
	c, err := sigma.Challenge(p.hasher, p.alg, p.group.Order(),
		p.group.PointBytes(r), p.group.PointBytes(gen), p.group.PointBytes(y), statement)
	if err != nil {
		return nil, err
	}
	s, err := sigma.Response(nonce, c, secret, p.group.Order())
	if err != nil {
		return nil, err
	}
	return &Proof{
		Commitment:    r,
		Challenge:     sigma.ScalarHex(c),
		Response:      sigma.ScalarHex(s),
		PublicKey:     y,
		Generator:     gen,
		Curve:         p.group.Name(),
		Order:         p.group.Order().Text(16),
		HashAlgorithm: p.alg,
	}, nil
}

// Verify checks g^s == R + c*y after re-deriving the challenge from the
// transcript and statement. It is pure: malformed encodings, off-curve
// points, or a failed equation all come back as (false, reason), never as an
// error or panic, and no secret is ever needed.
func Verify(g *curve.Group, h sigma.Hasher, proof *Proof, statement []byte) (bool, string) {
	if proof == nil {
		return false, "missing proof"
	}
	c, err := sigma.ParseScalarHex(proof.Challenge)
	if err != nil {
		return false, "malformed challenge"
	}
	s, err := sigma.ParseScalarHex(proof.Response)
	if err != nil {
		return false, "malformed response"
	}
	if proof.Curve != g.Name() {
		return false, "curve mismatch"
	}
	if !g.IsOnCurve(proof.Generator) || !g.IsOnCurve(proof.PublicKey) || !g.IsOnCurve(proof.Commitment) {
		return false, "point not on curve"
	}
	expected, err := sigma.Challenge(h, proof.HashAlgorithm, g.Order(),
		g.PointBytes(proof.Commitment), g.PointBytes(proof.Generator), g.PointBytes(proof.PublicKey), statement)
	if err != nil {
		return false, "challenge derivation failed"
	}
	if expected.Cmp(c) != 0 {
		return false, "challenge mismatch"
	}

	left, err := g.ScalarMult(proof.Generator, s)
	if err != nil {
		return false, "degraded arithmetic"
	}
	cy, err := g.ScalarMult(proof.PublicKey, c)
	if err != nil {
		return false, "degraded arithmetic"
	}
	right, err := g.Add(proof.Commitment, cy)
	if err != nil {
		return false, "degraded arithmetic"
	}
	if !left.Equal(right) {
		return false, "verification equation failed"
	}
	return true, ""
}
