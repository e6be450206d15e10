package pedersen

import (
	"math/big"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

// MembershipProof shows a committed value is one of a public set without
// revealing which member. It is a disjunctive sigma proof: one live branch,
// every other branch simulated, all bound under a single shared challenge
// that the branch challenges must sum to.
type MembershipProof struct {
	Commitment        curve.Point   `json:"commitment"`
	Set               []string      `json:"set"`
	BranchCommitments []curve.Point `json:"branchCommitments"`
	BranchChallenges  []string      `json:"branchChallenges"`
	Responses         []string      `json:"responses"`
	Challenge         string        `json:"challenge"`
	G                 curve.Point   `json:"g"`
	H                 curve.Point   `json:"h"`
	Curve             string        `json:"curve"`
	HashAlgorithm     string        `json:"hashAlgorithm"`
}

// branchBase computes D_j = C - g^{s_j}. Branch j claims knowledge of r with
// D_j = h^r, which holds exactly when the committed value equals s_j.
func branchBase(p *Params, commitment curve.Point, member *big.Int) (curve.Point, error) {
	gs, err := p.Group.ScalarMult(p.G, member)
	if err != nil {
		return curve.Point{}, err
	}
	return p.Group.Add(commitment, p.Group.Neg(gs))
}

// ProveMembership fails with ErrNotInSet when the value is not a set member;
// a proof must never exist for a false statement.
func ProveMembership(p *Params, value, blinding *big.Int, set []*big.Int, statement []byte, rnd sigma.Rand, h sigma.Hasher, algorithm string) (*MembershipProof, error) {
	match := -1
	for j, s := range set {
		if s.Cmp(value) == 0 {
			match = j
			break
		}
	}
	if match < 0 {
		return nil, ErrNotInSet
	}

	commitment, err := p.Commit(value, blinding)
	if err != nil {
		return nil, err
	}
	n := p.Group.Order()

	branchComms := make([]curve.Point, len(set))
	branchChals := make([]*big.Int, len(set))
	responses := make([]*big.Int, len(set))
	var nonce *sigma.Nonce

	for j, s := range set {
		dj, err := branchBase(p, commitment, s)
		if err != nil {
			return nil, err
		}
		if j == match {
			// live branch: a real commitment on base h
			var a curve.Point
			nonce, a, err = sigma.Commit(p.Group, p.H, rnd)
			if err != nil {
				return nil, err
			}
			branchComms[j] = a
			continue
		}
		// simulated branch: pick challenge and response first, then solve
		// backwards for a commitment that satisfies the verification equation
		cj, err := rnd.Scalar(p.Group)
		if err != nil {
			return nil, err
		}
		zj, err := rnd.Scalar(p.Group)
		if err != nil {
			return nil, err
		}
		hz, err := p.Group.ScalarMult(p.H, zj)
		if err != nil {
			return nil, err
		}
		cd, err := p.Group.ScalarMult(dj, cj)
		if err != nil {
			return nil, err
		}
		aj, err := p.Group.Add(hz, p.Group.Neg(cd))
		if err != nil {
			return nil, err
		}
		branchComms[j] = aj
		branchChals[j] = cj
		responses[j] = zj
	}

	// shared challenge binds every branch commitment, the commitment, the
	// set, and the statement
	var hashInput [][]byte
	for _, a := range branchComms {
		hashInput = append(hashInput, p.Group.PointBytes(a))
	}
	hashInput = append(hashInput, p.Group.PointBytes(commitment))
	for _, s := range set {
		hashInput = append(hashInput, s.Bytes())
	}
	hashInput = append(hashInput, p.Group.PointBytes(p.G), p.Group.PointBytes(p.H), statement)
	shared, err := sigma.Challenge(h, algorithm, n, hashInput...)
	if err != nil {
		return nil, err
	}

	// the live branch absorbs whatever challenge mass the simulated branches
	// left over: c_match = shared - sum(c_j) mod n
	cMatch := new(big.Int).Set(shared)
	for j, cj := range branchChals {
		if j == match {
			continue
		}
		cMatch.Sub(cMatch, cj)
	}
	cMatch.Mod(cMatch, n)
	branchChals[match] = cMatch

	zMatch, err := sigma.Response(nonce, cMatch, blinding, n)
	if err != nil {
		return nil, err
	}
	responses[match] = zMatch

	proof := &MembershipProof{
		Commitment:        commitment,
		Set:               make([]string, len(set)),
		BranchCommitments: branchComms,
		BranchChallenges:  make([]string, len(set)),
		Responses:         make([]string, len(set)),
		Challenge:         sigma.ScalarHex(shared),
		G:                 p.G,
		H:                 p.H,
		Curve:             p.Group.Name(),
		HashAlgorithm:     algorithm,
	}
	for j := range set {
		proof.Set[j] = set[j].String()
		proof.BranchChallenges[j] = sigma.ScalarHex(branchChals[j])
		proof.Responses[j] = sigma.ScalarHex(responses[j])
	}
	return proof, nil
}

// VerifyMembership recomputes the shared challenge, checks the branch
// challenges sum to it, and checks h^{z_j} == A_j + c_j*D_j for every branch.
// A verifier cannot tell the live branch from the simulated ones.
func VerifyMembership(p *Params, proof *MembershipProof, statement []byte, h sigma.Hasher) (bool, string) {
	if proof == nil {
		return false, "missing proof"
	}
	if proof.Curve != p.Group.Name() {
		return false, "curve mismatch"
	}
	if !p.matches(proof.G, proof.H) {
		return false, "generator mismatch"
	}
	k := len(proof.Set)
	if k == 0 || len(proof.BranchCommitments) != k || len(proof.BranchChallenges) != k || len(proof.Responses) != k {
		return false, "branch count mismatch"
	}
	if !p.Group.IsOnCurve(proof.Commitment) {
		return false, "point not on curve"
	}
	shared, err := sigma.ParseScalarHex(proof.Challenge)
	if err != nil {
		return false, "malformed challenge"
	}

	n := p.Group.Order()
	set := make([]*big.Int, k)
	for j, s := range proof.Set {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return false, "malformed set member"
		}
		set[j] = v
	}

	var hashInput [][]byte
	for _, a := range proof.BranchCommitments {
		if !p.Group.IsOnCurve(a) {
			return false, "point not on curve"
		}
		hashInput = append(hashInput, p.Group.PointBytes(a))
	}
	hashInput = append(hashInput, p.Group.PointBytes(proof.Commitment))
	for _, s := range set {
		hashInput = append(hashInput, s.Bytes())
	}
	hashInput = append(hashInput, p.Group.PointBytes(p.G), p.Group.PointBytes(p.H), statement)
	expected, err := sigma.Challenge(h, proof.HashAlgorithm, n, hashInput...)
	if err != nil {
		return false, "challenge derivation failed"
	}
	if expected.Cmp(shared) != 0 {
		return false, "challenge mismatch"
	}

	sum := new(big.Int)
	for j := 0; j < k; j++ {
		cj, err := sigma.ParseScalarHex(proof.BranchChallenges[j])
		if err != nil {
			return false, "malformed branch challenge"
		}
		zj, err := sigma.ParseScalarHex(proof.Responses[j])
		if err != nil {
			return false, "malformed response"
		}
		sum.Add(sum, cj)

		dj, err := branchBase(p, proof.Commitment, set[j])
		if err != nil {
			return false, "degraded arithmetic"
		}
		left, err := p.Group.ScalarMult(p.H, zj)
		if err != nil {
			return false, "degraded arithmetic"
		}
		cd, err := p.Group.ScalarMult(dj, cj)
		if err != nil {
			return false, "degraded arithmetic"
		}
		right, err := p.Group.Add(proof.BranchCommitments[j], cd)
		if err != nil {
			return false, "degraded arithmetic"
		}
		if !left.Equal(right) {
			return false, "branch equation failed"
		}
	}
	if sum.Mod(sum, n).Cmp(shared) != 0 {
		return false, "branch challenges do not bind to shared challenge"
	}
	return true, ""
}
