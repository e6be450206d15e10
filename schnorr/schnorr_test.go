package schnorr

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

func testProver(t *testing.T, name string) (*curve.Group, *Prover) {
	g, err := curve.NewGroup(name)
	require.NoError(t, err)
	return g, NewProver(g, sigma.CryptoRand{}, sigma.StdHasher{}, "sha-256")
}

func TestProveVerify(t *testing.T) {
	for _, name := range curve.Names() {
		g, prover := testProver(t, name)
		statement := []byte("discrete_log|y = g^x|")

		proof, err := prover.Prove(big.NewInt(7), statement)
		require.NoError(t, err, name)

		// y must be g^7 over the registry generator
		y, err := g.ScalarBaseMult(big.NewInt(7))
		require.NoError(t, err)
		assert.True(t, proof.PublicKey.Equal(y), name)

		ok, reason := Verify(g, sigma.StdHasher{}, proof, statement)
		assert.True(t, ok, "%s: %s", name, reason)
	}
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	g, prover := testProver(t, "secp256k1")
	statement := []byte("discrete_log|y = g^x|")

	proof, err := prover.Prove(big.NewInt(7), statement)
	require.NoError(t, err)

	tampered := *proof
	b := []byte(proof.Response)
	if b[0] == '1' {
		b[0] = '2'
	} else {
		b[0] = '1'
	}
	tampered.Response = string(b)

	ok, reason := Verify(g, sigma.StdHasher{}, &tampered, statement)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestVerifyRejectsTamperedChallenge(t *testing.T) {
	g, prover := testProver(t, "secp256k1")
	statement := []byte("discrete_log|y = g^x|")

	proof, err := prover.Prove(big.NewInt(11), statement)
	require.NoError(t, err)

	tampered := *proof
	b := []byte(proof.Challenge)
	if b[0] == 'a' {
		b[0] = 'b'
	} else {
		b[0] = 'a'
	}
	tampered.Challenge = string(b)

	ok, reason := Verify(g, sigma.StdHasher{}, &tampered, statement)
	assert.False(t, ok)
	assert.Equal(t, "challenge mismatch", reason)
}

func TestVerifyRejectsWrongStatement(t *testing.T) {
	g, prover := testProver(t, "secp256k1")

	proof, err := prover.Prove(big.NewInt(7), []byte("statement one"))
	require.NoError(t, err)

	ok, reason := Verify(g, sigma.StdHasher{}, proof, []byte("statement two"))
	assert.False(t, ok)
	assert.Equal(t, "challenge mismatch", reason)
}

func TestNonceFreshness(t *testing.T) {
	_, prover := testProver(t, "secp256k1")
	statement := []byte("discrete_log|y = g^x|")

	p1, err := prover.Prove(big.NewInt(7), statement)
	require.NoError(t, err)
	p2, err := prover.Prove(big.NewInt(7), statement)
	require.NoError(t, err)

	assert.False(t, p1.Commitment.Equal(p2.Commitment), "nonces must be fresh per proof")
	assert.NotEqual(t, p1.Challenge, p2.Challenge)
	assert.NotEqual(t, p1.Response, p2.Response)
}

func TestVerifyMalformedNeverPanics(t *testing.T) {
	g, prover := testProver(t, "secp256k1")
	statement := []byte("discrete_log|y = g^x|")

	proof, err := prover.Prove(big.NewInt(7), statement)
	require.NoError(t, err)

	cases := []func(p *Proof){
		func(p *Proof) { p.Challenge = "not-hex" },
		func(p *Proof) { p.Response = "" },
		func(p *Proof) { p.PublicKey = curve.Point{X: big.NewInt(1), Y: big.NewInt(1)} },
		func(p *Proof) { p.Curve = "P-384" },
	}
	for i, mutate := range cases {
		bad := *proof
		mutate(&bad)
		ok, reason := Verify(g, sigma.StdHasher{}, &bad, statement)
		assert.False(t, ok, "case %d", i)
		assert.NotEmpty(t, reason, "case %d", i)
	}

	ok, reason := Verify(g, sigma.StdHasher{}, nil, statement)
	assert.False(t, ok)
	assert.Equal(t, "missing proof", reason)
}

func TestProofJSONRoundTrip(t *testing.T) {
	g, prover := testProver(t, "P-521")
	statement := []byte("discrete_log|y = g^x|")

	proof, err := prover.Prove(big.NewInt(123456789), statement)
	require.NoError(t, err)

	data, err := json.Marshal(proof)
	require.NoError(t, err)
	var back Proof
	require.NoError(t, json.Unmarshal(data, &back))

	ok, reason := Verify(g, sigma.StdHasher{}, &back, statement)
	assert.True(t, ok, reason)
}
