package pedersen

import (
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

// OpeningProof shows knowledge of (m, r) with C = g^m h^r without revealing
// either.
type OpeningProof struct {
	Commitment    curve.Point `json:"commitment"`
	A             curve.Point `json:"blindingCommitment"`
	Challenge     string      `json:"challenge"`
	Z1            string      `json:"z1"`
	Z2            string      `json:"z2"`
	G             curve.Point `json:"g"`
	H             curve.Point `json:"h"`
	Curve         string      `json:"curve"`
	HashAlgorithm string      `json:"hashAlgorithm"`
}

// ProveOpening commits to fresh blinding scalars (w, v), binds A, C, the
// generators and the statement into one challenge, and answers with
// z1 = w + c*m, z2 = v + c*r.
func ProveOpening(p *Params, m, r *big.Int, statement []byte, rnd sigma.Rand, h sigma.Hasher, algorithm string) (*OpeningProof, error) {
	c, err := p.Commit(m, r)
	if err != nil {
		return nil, err
	}
	w, err := rnd.Scalar(p.Group)
	if err != nil {
		return nil, err
	}
	v, err := rnd.Scalar(p.Group)
	if err != nil {
		return nil, err
	}
	a, err := p.Commit(w, v)
	if err != nil {
		return nil, err
	}
	chal, err := sigma.Challenge(h, algorithm, p.Group.Order(),
		p.Group.PointBytes(a), p.Group.PointBytes(c),
		p.Group.PointBytes(p.G), p.Group.PointBytes(p.H), statement)
	if err != nil {
		return nil, err
	}
	n := p.Group.Order()
	z1 := new(big.Int).Mul(chal, m)
	z1.Add(z1, w).Mod(z1, n)
	z2 := new(big.Int).Mul(chal, r)
	z2.Add(z2, v).Mod(z2, n)

	return &OpeningProof{
		Commitment:    c,
		A:             a,
		Challenge:     sigma.ScalarHex(chal),
		Z1:            sigma.ScalarHex(z1),
		Z2:            sigma.ScalarHex(z2),
		G:             p.G,
		H:             p.H,
		Curve:         p.Group.Name(),
		HashAlgorithm: algorithm,
	}, nil
}

// VerifyOpening checks g^z1 h^z2 == A + c*C with a re-derived challenge.
func VerifyOpening(p *Params, proof *OpeningProof, statement []byte, h sigma.Hasher) (bool, string) {
	if proof == nil {
		return false, "missing proof"
	}
	if proof.Curve != p.Group.Name() {
		return false, "curve mismatch"
	}
	if !p.matches(proof.G, proof.H) {
		return false, "generator mismatch"
	}
	c, err := sigma.ParseScalarHex(proof.Challenge)
	if err != nil {
		return false, "malformed challenge"
	}
	z1, err := sigma.ParseScalarHex(proof.Z1)
	if err != nil {
		return false, "malformed response"
	}
	z2, err := sigma.ParseScalarHex(proof.Z2)
	if err != nil {
		return false, "malformed response"
	}
	if !p.Group.IsOnCurve(proof.Commitment) || !p.Group.IsOnCurve(proof.A) {
		return false, "point not on curve"
	}
	expected, err := sigma.Challenge(h, proof.HashAlgorithm, p.Group.Order(),
		p.Group.PointBytes(proof.A), p.Group.PointBytes(proof.Commitment),
		p.Group.PointBytes(p.G), p.Group.PointBytes(p.H), statement)
	if err != nil {
		return false, "challenge derivation failed"
	}
	if expected.Cmp(c) != 0 {
		return false, "challenge mismatch"
	}

	left, err := p.Commit(z1, z2)
	if err != nil {
		return false, "degraded arithmetic"
	}
	cc, err := p.Group.ScalarMult(proof.Commitment, c)
	if err != nil {
		return false, "degraded arithmetic"
	}
	right, err := p.Group.Add(proof.A, cc)
	if err != nil {
		return false, "degraded arithmetic"
	}
	if !left.Equal(right) {
		return false, "opening equation failed"
	}
	return true, ""
}
