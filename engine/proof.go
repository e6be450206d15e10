package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zkid-labs/sigma-proofs/pedersen"
	"github.com/zkid-labs/sigma-proofs/schnorr"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

// Body is the proof component variant selected by the statement type. Exactly
// one concrete component exists per proof; irrelevant components cannot be
// populated or inspected.
type Body interface {
	Kind() StatementType
}

type SchnorrBody struct{ schnorr.Proof }

func (SchnorrBody) Kind() StatementType { return DiscreteLog }

type OpeningBody struct{ pedersen.OpeningProof }

func (OpeningBody) Kind() StatementType { return PedersenCommitment }

type RangeBody struct{ pedersen.RangeProof }

func (RangeBody) Kind() StatementType { return RangeProof }

type MembershipBody struct{ pedersen.MembershipProof }

func (MembershipBody) Kind() StatementType { return SetMembership }

// TranscriptBody carries the generic Fiat-Shamir transcript for custom
// statements.
type TranscriptBody struct{ sigma.Transcript }

func (TranscriptBody) Kind() StatementType { return Custom }

// Proof is the issued record: the stripped statement, the proof body, and
// metadata. Once cached it is immutable; it is replaced only by eviction.
type Proof struct {
	ID               string            `json:"id"`
	Type             StatementType     `json:"type"`
	Statement        Statement         `json:"statement"`
	Body             Body              `json:"-"`
	PublicInputs     map[string]string `json:"publicInputs,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	VerificationKey  string            `json:"verificationKey"`
	SecurityLevel    int               `json:"securityLevel"`
	Algorithm        string            `json:"algorithm"`
	KeyLength        int               `json:"keyLength"`
	QuantumResistant bool              `json:"quantumResistant"`
}

// bodyEnvelope is the JSON shape of the tagged union: a kind discriminator
// plus the single populated component.
type bodyEnvelope struct {
	Kind       StatementType             `json:"kind"`
	Schnorr    *schnorr.Proof            `json:"schnorrProof,omitempty"`
	Pedersen   *pedersen.OpeningProof    `json:"pedersenProof,omitempty"`
	Range      *pedersen.RangeProof      `json:"rangeProof,omitempty"`
	Membership *pedersen.MembershipProof `json:"membershipProof,omitempty"`
	FiatShamir *sigma.Transcript         `json:"fiatShamirTransform,omitempty"`
}

func envelopeFor(b Body) (bodyEnvelope, error) {
	env := bodyEnvelope{}
	switch v := b.(type) {
	case SchnorrBody:
		env.Kind, env.Schnorr = DiscreteLog, &v.Proof
	case OpeningBody:
		env.Kind, env.Pedersen = PedersenCommitment, &v.OpeningProof
	case RangeBody:
		env.Kind, env.Range = RangeProof, &v.RangeProof
	case MembershipBody:
		env.Kind, env.Membership = SetMembership, &v.MembershipProof
	case TranscriptBody:
		env.Kind, env.FiatShamir = Custom, &v.Transcript
	default:
		return env, fmt.Errorf("unknown proof body %T", b)
	}
	return env, nil
}

func (env bodyEnvelope) body() Body {
	switch env.Kind {
	case DiscreteLog:
		if env.Schnorr != nil {
			return SchnorrBody{*env.Schnorr}
		}
	case PedersenCommitment:
		if env.Pedersen != nil {
			return OpeningBody{*env.Pedersen}
		}
	case RangeProof:
		if env.Range != nil {
			return RangeBody{*env.Range}
		}
	case SetMembership:
		if env.Membership != nil {
			return MembershipBody{*env.Membership}
		}
	case Custom:
		if env.FiatShamir != nil {
			return TranscriptBody{*env.FiatShamir}
		}
	}
	return nil
}

type proofAlias Proof

type proofJSON struct {
	proofAlias
	ProofBody bodyEnvelope `json:"proof"`
}

func (p Proof) MarshalJSON() ([]byte, error) {
	env, err := envelopeFor(p.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(proofJSON{proofAlias: proofAlias(p), ProofBody: env})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Proof(raw.proofAlias)
	p.Body = raw.ProofBody.body()
	return nil
}

// proofcache.Record implementation.

func (p *Proof) CacheID() string     { return p.ID }
func (p *Proof) IssuedAt() time.Time { return p.Timestamp }
func (p *Proof) Expiry() time.Time   { return p.ExpiresAt }
func (p *Proof) Level() int          { return p.SecurityLevel }
func (p *Proof) PostQuantum() bool   { return p.QuantumResistant }
