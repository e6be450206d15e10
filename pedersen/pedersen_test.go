package pedersen

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

func testParams(t *testing.T) *Params {
	g, err := curve.NewGroup("secp256k1")
	require.NoError(t, err)
	p, err := Setup(g)
	require.NoError(t, err)
	return p
}

func flipHex(s string) string {
	b := []byte(s)
	if b[0] == '1' {
		b[0] = '2'
	} else {
		b[0] = '1'
	}
	return string(b)
}

func TestSetup(t *testing.T) {
	for _, name := range curve.Names() {
		g, err := curve.NewGroup(name)
		require.NoError(t, err)
		p, err := Setup(g)
		require.NoError(t, err)

		assert.True(t, p.G.Equal(g.Generator()), name)
		assert.True(t, g.IsOnCurve(p.H), name)
		assert.False(t, p.H.Equal(p.G), "%s: h must be independent of g", name)

		again, err := Setup(g)
		require.NoError(t, err)
		assert.True(t, p.H.Equal(again.H), "%s: h derivation must be deterministic", name)
	}
}

func TestCommitHomomorphic(t *testing.T) {
	p := testParams(t)
	// C(m1, r1) + C(m2, r2) == C(m1+m2, r1+r2)
	c1, err := p.Commit(big.NewInt(3), big.NewInt(11))
	require.NoError(t, err)
	c2, err := p.Commit(big.NewInt(4), big.NewInt(19))
	require.NoError(t, err)
	sum, err := p.Group.Add(c1, c2)
	require.NoError(t, err)
	combined, err := p.Commit(big.NewInt(7), big.NewInt(30))
	require.NoError(t, err)
	assert.True(t, sum.Equal(combined))
}

func TestOpeningProof(t *testing.T) {
	p := testParams(t)
	statement := []byte("pedersen_commitment|C = g^m h^r|")

	proof, err := ProveOpening(p, big.NewInt(42), big.NewInt(77), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	ok, reason := VerifyOpening(p, proof, statement, sigma.StdHasher{})
	assert.True(t, ok, reason)
}

func TestOpeningProofTamper(t *testing.T) {
	p := testParams(t)
	statement := []byte("pedersen_commitment|C = g^m h^r|")

	proof, err := ProveOpening(p, big.NewInt(42), big.NewInt(77), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	tampered := *proof
	tampered.Z1 = flipHex(proof.Z1)
	ok, _ := VerifyOpening(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)

	tampered = *proof
	tampered.Challenge = flipHex(proof.Challenge)
	ok, reason := VerifyOpening(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)
	assert.Equal(t, "challenge mismatch", reason)

	ok, reason = VerifyOpening(p, proof, []byte("another statement"), sigma.StdHasher{})
	assert.False(t, ok)
	assert.Equal(t, "challenge mismatch", reason)
}

func TestOpeningProofForeignGenerators(t *testing.T) {
	p := testParams(t)
	statement := []byte("pedersen_commitment|C = g^m h^r|")

	proof, err := ProveOpening(p, big.NewInt(42), big.NewInt(77), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	// a prover-picked h with known discrete log must be rejected
	tampered := *proof
	evil, err := p.Group.ScalarBaseMult(big.NewInt(1337))
	require.NoError(t, err)
	tampered.H = evil
	ok, reason := VerifyOpening(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)
	assert.Equal(t, "generator mismatch", reason)
}

func TestRangeProof(t *testing.T) {
	p := testParams(t)
	statement := []byte("range_proof|0 <= value < range|")

	proof, err := ProveRange(p, big.NewInt(5), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)
	assert.Len(t, proof.BitCommitments, 4)

	ok, reason := VerifyRange(p, proof, statement, sigma.StdHasher{})
	assert.True(t, ok, reason)
}

func TestRangeProofOutOfRangeFailsAtGeneration(t *testing.T) {
	p := testParams(t)
	statement := []byte("range_proof|0 <= value < range|")

	_, err := ProveRange(p, big.NewInt(20), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = ProveRange(p, big.NewInt(-1), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = ProveRange(p, big.NewInt(16), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRangeProofBoundaries(t *testing.T) {
	p := testParams(t)
	statement := []byte("range_proof|0 <= value < range|")

	for _, value := range []int64{0, 15} {
		proof, err := ProveRange(p, big.NewInt(value), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
		require.NoError(t, err)
		ok, reason := VerifyRange(p, proof, statement, sigma.StdHasher{})
		assert.True(t, ok, "value %d: %s", value, reason)
	}
}

func TestRangeProofTamperSingleBitFailsWhole(t *testing.T) {
	p := testParams(t)
	statement := []byte("range_proof|0 <= value < range|")

	proof, err := ProveRange(p, big.NewInt(5), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	tampered := *proof
	tampered.Z1 = append([]string(nil), proof.Z1...)
	tampered.Z1[2] = flipHex(proof.Z1[2])
	ok, reason := VerifyRange(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)
	assert.Equal(t, "bit equation failed", reason)
}

func TestRangeProofBitsCannotBeMixed(t *testing.T) {
	p := testParams(t)
	statement := []byte("range_proof|0 <= value < range|")

	p1, err := ProveRange(p, big.NewInt(5), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)
	p2, err := ProveRange(p, big.NewInt(5), big.NewInt(16), statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	// splicing a bit from another proof breaks the shared challenge binding
	mixed := *p1
	mixed.BitCommitments = append([]curve.Point(nil), p1.BitCommitments...)
	mixed.BitBlindings = append([]curve.Point(nil), p1.BitBlindings...)
	mixed.Z1 = append([]string(nil), p1.Z1...)
	mixed.Z2 = append([]string(nil), p1.Z2...)
	mixed.BitCommitments[0] = p2.BitCommitments[0]
	mixed.BitBlindings[0] = p2.BitBlindings[0]
	mixed.Z1[0] = p2.Z1[0]
	mixed.Z2[0] = p2.Z2[0]

	ok, _ := VerifyRange(p, &mixed, statement, sigma.StdHasher{})
	assert.False(t, ok)
}

func TestMembershipProof(t *testing.T) {
	p := testParams(t)
	statement := []byte("set_membership|value in set|")
	set := []*big.Int{big.NewInt(10), big.NewInt(25), big.NewInt(31), big.NewInt(99)}

	proof, err := ProveMembership(p, big.NewInt(31), big.NewInt(555), set, statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)
	assert.Len(t, proof.BranchCommitments, len(set))

	ok, reason := VerifyMembership(p, proof, statement, sigma.StdHasher{})
	assert.True(t, ok, reason)
}

func TestMembershipNotInSetFailsHard(t *testing.T) {
	p := testParams(t)
	statement := []byte("set_membership|value in set|")
	set := []*big.Int{big.NewInt(10), big.NewInt(25)}

	_, err := ProveMembership(p, big.NewInt(31), big.NewInt(555), set, statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	assert.ErrorIs(t, err, ErrNotInSet)
}

func TestMembershipTamper(t *testing.T) {
	p := testParams(t)
	statement := []byte("set_membership|value in set|")
	set := []*big.Int{big.NewInt(10), big.NewInt(25), big.NewInt(31)}

	proof, err := ProveMembership(p, big.NewInt(25), big.NewInt(555), set, statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
	require.NoError(t, err)

	tampered := *proof
	tampered.Responses = append([]string(nil), proof.Responses...)
	tampered.Responses[1] = flipHex(proof.Responses[1])
	ok, _ := VerifyMembership(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)

	// swapping a claimed set member must break the branch equations
	tampered = *proof
	tampered.Set = append([]string(nil), proof.Set...)
	tampered.Set[0] = "11"
	ok, _ = VerifyMembership(p, &tampered, statement, sigma.StdHasher{})
	assert.False(t, ok)
}

func TestMembershipFirstAndLastIndex(t *testing.T) {
	p := testParams(t)
	statement := []byte("set_membership|value in set|")
	set := []*big.Int{big.NewInt(10), big.NewInt(25), big.NewInt(31)}

	for _, value := range []int64{10, 31} {
		proof, err := ProveMembership(p, big.NewInt(value), big.NewInt(888), set, statement, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
		require.NoError(t, err)
		ok, reason := VerifyMembership(p, proof, statement, sigma.StdHasher{})
		assert.True(t, ok, "value %d: %s", value, reason)
	}
}
