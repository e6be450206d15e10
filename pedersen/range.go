package pedersen

import (
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

// RangeProof shows 0 <= value < bound for a committed value. The value is
// decomposed into ceil(log2(bound)) bits; bit i is committed against the
// weighted generator g^(2^i) and h, every per-bit commitment feeds one shared
// challenge, and each bit gets its own response pair.
type RangeProof struct {
	Commitment     curve.Point   `json:"commitment"`
	Bound          string        `json:"bound"`
	BitCommitments []curve.Point `json:"bitCommitments"`
	BitBlindings   []curve.Point `json:"bitBlindingCommitments"`
	Challenge      string        `json:"challenge"`
	Z1             []string      `json:"z1"`
	Z2             []string      `json:"z2"`
	G              curve.Point   `json:"g"`
	H              curve.Point   `json:"h"`
	Curve          string        `json:"curve"`
	HashAlgorithm  string        `json:"hashAlgorithm"`
}

// rangeBits is ceil(log2(bound)): the number of bits available to the
// decomposition.
func rangeBits(bound *big.Int) int {
	bits := new(big.Int).Sub(bound, big.NewInt(1)).BitLen()
	if bits == 0 {
		bits = 1
	}
	return bits
}

// ProveRange fails with ErrValueOutOfRange when the value does not fit the
// claimed bound; an out-of-range value must never yield a proof.
func ProveRange(p *Params, value, bound *big.Int, statement []byte, rnd sigma.Rand, h sigma.Hasher, algorithm string) (*RangeProof, error) {
	if bound.Sign() <= 0 || value.Sign() < 0 || value.Cmp(bound) >= 0 {
		return nil, ErrValueOutOfRange
	}
	bits := rangeBits(bound)
	n := p.Group.Order()

	bitComms := make([]curve.Point, bits)
	blindComms := make([]curve.Point, bits)
	blinds := make([]*big.Int, bits)
	alphas := make([]*big.Int, bits)
	betas := make([]*big.Int, bits)
	var hashInput [][]byte

	aggregate := curve.Infinity()
	for i := 0; i < bits; i++ {
		weighted, err := p.Group.ScalarMult(p.G, new(big.Int).Lsh(big.NewInt(1), uint(i)))
		if err != nil {
			return nil, err
		}
		ri, err := rnd.Scalar(p.Group)
		if err != nil {
			return nil, err
		}
		blinds[i] = ri

		// C_i = (g^(2^i))^b_i * h^r_i
		bit := big.NewInt(int64(value.Bit(i)))
		gb, err := p.Group.ScalarMult(weighted, bit)
		if err != nil {
			return nil, err
		}
		hr, err := p.Group.ScalarMult(p.H, ri)
		if err != nil {
			return nil, err
		}
		ci, err := p.Group.Add(gb, hr)
		if err != nil {
			return nil, err
		}
		bitComms[i] = ci
		aggregate, err = p.Group.Add(aggregate, ci)
		if err != nil {
			return nil, err
		}

		alpha, err := rnd.Scalar(p.Group)
		if err != nil {
			return nil, err
		}
		beta, err := rnd.Scalar(p.Group)
		if err != nil {
			return nil, err
		}
		alphas[i], betas[i] = alpha, beta
		ga, err := p.Group.ScalarMult(weighted, alpha)
		if err != nil {
			return nil, err
		}
		hb, err := p.Group.ScalarMult(p.H, beta)
		if err != nil {
			return nil, err
		}
		ai, err := p.Group.Add(ga, hb)
		if err != nil {
			return nil, err
		}
		blindComms[i] = ai
	}

	// one challenge over every per-bit commitment, so bits from different
	// proofs cannot be mixed and matched
	for i := 0; i < bits; i++ {
		hashInput = append(hashInput, p.Group.PointBytes(blindComms[i]), p.Group.PointBytes(bitComms[i]))
	}
	hashInput = append(hashInput,
		p.Group.PointBytes(p.G), p.Group.PointBytes(p.H),
		bound.Bytes(), statement)
	chal, err := sigma.Challenge(h, algorithm, n, hashInput...)
	if err != nil {
		return nil, err
	}

	z1 := make([]string, bits)
	z2 := make([]string, bits)
	for i := 0; i < bits; i++ {
		bit := big.NewInt(int64(value.Bit(i)))
		zi1 := new(big.Int).Mul(chal, bit)
		zi1.Add(zi1, alphas[i]).Mod(zi1, n)
		zi2 := new(big.Int).Mul(chal, blinds[i])
		zi2.Add(zi2, betas[i]).Mod(zi2, n)
		z1[i] = sigma.ScalarHex(zi1)
		z2[i] = sigma.ScalarHex(zi2)
	}

	return &RangeProof{
		Commitment:     aggregate,
		Bound:          bound.String(),
		BitCommitments: bitComms,
		BitBlindings:   blindComms,
		Challenge:      sigma.ScalarHex(chal),
		Z1:             z1,
		Z2:             z2,
		G:              p.G,
		H:              p.H,
		Curve:          p.Group.Name(),
		HashAlgorithm:  algorithm,
	}, nil
}

// VerifyRange recomputes the shared challenge and checks every per-bit
// equation (g^(2^i))^z1_i * h^z2_i == A_i + c*C_i, plus that the per-bit
// commitments fold back into the aggregate commitment. Failing any bit fails
// the whole proof.
func VerifyRange(p *Params, proof *RangeProof, statement []byte, h sigma.Hasher) (bool, string) {
	if proof == nil {
		return false, "missing proof"
	}
	if proof.Curve != p.Group.Name() {
		return false, "curve mismatch"
	}
	if !p.matches(proof.G, proof.H) {
		return false, "generator mismatch"
	}
	bound, ok := new(big.Int).SetString(proof.Bound, 10)
	if !ok || bound.Sign() <= 0 {
		return false, "malformed bound"
	}
	bits := rangeBits(bound)
	if len(proof.BitCommitments) != bits || len(proof.BitBlindings) != bits ||
		len(proof.Z1) != bits || len(proof.Z2) != bits {
		return false, "bit decomposition mismatch"
	}
	c, err := sigma.ParseScalarHex(proof.Challenge)
	if err != nil {
		return false, "malformed challenge"
	}

	n := p.Group.Order()
	var hashInput [][]byte
	for i := 0; i < bits; i++ {
		if !p.Group.IsOnCurve(proof.BitBlindings[i]) || !p.Group.IsOnCurve(proof.BitCommitments[i]) {
			return false, "point not on curve"
		}
		hashInput = append(hashInput, p.Group.PointBytes(proof.BitBlindings[i]), p.Group.PointBytes(proof.BitCommitments[i]))
	}
	hashInput = append(hashInput,
		p.Group.PointBytes(p.G), p.Group.PointBytes(p.H),
		bound.Bytes(), statement)
	expected, err := sigma.Challenge(h, proof.HashAlgorithm, n, hashInput...)
	if err != nil {
		return false, "challenge derivation failed"
	}
	if expected.Cmp(c) != 0 {
		return false, "challenge mismatch"
	}

	aggregate := curve.Infinity()
	for i := 0; i < bits; i++ {
		z1, err := sigma.ParseScalarHex(proof.Z1[i])
		if err != nil {
			return false, "malformed response"
		}
		z2, err := sigma.ParseScalarHex(proof.Z2[i])
		if err != nil {
			return false, "malformed response"
		}
		weighted, err := p.Group.ScalarMult(p.G, new(big.Int).Lsh(big.NewInt(1), uint(i)))
		if err != nil {
			return false, "degraded arithmetic"
		}
		gz, err := p.Group.ScalarMult(weighted, z1)
		if err != nil {
			return false, "degraded arithmetic"
		}
		hz, err := p.Group.ScalarMult(p.H, z2)
		if err != nil {
			return false, "degraded arithmetic"
		}
		left, err := p.Group.Add(gz, hz)
		if err != nil {
			return false, "degraded arithmetic"
		}
		cc, err := p.Group.ScalarMult(proof.BitCommitments[i], c)
		if err != nil {
			return false, "degraded arithmetic"
		}
		right, err := p.Group.Add(proof.BitBlindings[i], cc)
		if err != nil {
			return false, "degraded arithmetic"
		}
		if !left.Equal(right) {
			return false, "bit equation failed"
		}
		aggregate, err = p.Group.Add(aggregate, proof.BitCommitments[i])
		if err != nil {
			return false, "degraded arithmetic"
		}
	}
	if !aggregate.Equal(proof.Commitment) {
		return false, "aggregate commitment mismatch"
	}
	return true, ""
}
