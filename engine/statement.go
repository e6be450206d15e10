package engine

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"time"
)

// StatementType selects which protocol proves a statement.
type StatementType string

const (
	DiscreteLog        StatementType = "discrete_log"
	PedersenCommitment StatementType = "pedersen_commitment"
	RangeProof         StatementType = "range_proof"
	SetMembership      StatementType = "set_membership"
	Custom             StatementType = "custom"
)

// Valid reports whether t is a supported statement type.
func (t StatementType) Valid() bool {
	switch t {
	case DiscreteLog, PedersenCommitment, RangeProof, SetMembership, Custom:
		return true
	}
	return false
}

// Statement describes one proof request. PrivateInputs hold the secrets the
// prover knows; they never serialize and never reach a proof record.
type Statement struct {
	Type          StatementType     `json:"type"`
	Description   string            `json:"description,omitempty"`
	PublicInputs  map[string]string `json:"publicInputs,omitempty"`
	PrivateInputs map[string]string `json:"-"`
	Relation      string            `json:"relation,omitempty"`
}

// stripped returns a copy with the private inputs dropped, safe to embed in
// a proof record.
func (s Statement) stripped() Statement {
	out := Statement{
		Type:        s.Type,
		Description: s.Description,
		Relation:    s.Relation,
	}
	if s.PublicInputs != nil {
		out.PublicInputs = make(map[string]string, len(s.PublicInputs))
		for k, v := range s.PublicInputs {
			out.PublicInputs[k] = v
		}
	}
	return out
}

// canonicalStatement serializes the full public statement plus timestamp for
// challenge derivation. Every public input goes in, keys sorted, so a
// commitment cannot be replayed against a different statement.
func canonicalStatement(s Statement, ts time.Time) []byte {
	var b bytes.Buffer
	b.WriteString(string(s.Type))
	b.WriteByte('|')
	b.WriteString(s.Relation)
	b.WriteByte('|')
	keys := make([]string, 0, len(s.PublicInputs))
	for k := range s.PublicInputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.PublicInputs[k])
		b.WriteByte(';')
	}
	b.WriteByte('|')
	b.WriteString(ts.UTC().Format(time.RFC3339Nano))
	return b.Bytes()
}

// verificationKey is a non-secret reference hash of statement, security
// level, and issue time. It identifies a proof; it is not a substitute for
// the cryptographic verification of the proof body.
func verificationKey(statement []byte, securityLevel int, ts time.Time) string {
	h := sha256.New()
	h.Write(statement)
	h.Write([]byte(strconv.Itoa(securityLevel)))
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}
