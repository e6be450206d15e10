// Package engine is the public surface of the proof system: it dispatches
// statements to the Schnorr and Pedersen provers, stamps metadata, enforces
// expiration, and talks to the proof cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zkid-labs/sigma-proofs/curve"
	"github.com/zkid-labs/sigma-proofs/pedersen"
	"github.com/zkid-labs/sigma-proofs/proofcache"
	"github.com/zkid-labs/sigma-proofs/schnorr"
	"github.com/zkid-labs/sigma-proofs/sigma"
)

var (
	// ErrUnsupportedStatement rejects statement types the engine does not know.
	ErrUnsupportedStatement = errors.New("unsupported statement type")
	// ErrMissingInput rejects statements lacking a required input.
	ErrMissingInput = errors.New("missing statement input")
	// ErrMalformedInput rejects inputs that do not parse.
	ErrMalformedInput = errors.New("malformed statement input")
	// ErrDegradedEngine refuses to prove on a group without a curve backend.
	ErrDegradedEngine = errors.New("refusing to prove with degraded arithmetic")
)

// GenerationError wraps any failure during proof generation. Generation
// aborts, nothing is cached, and it never degrades into returning a proof
// anyway.
type GenerationError struct {
	Type StatementType
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s proof: %v", e.Type, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Config controls one engine instance.
type Config struct {
	Curve         string        `json:"curve"`
	ProofTTL      time.Duration `json:"proofTTL"`
	CacheEnabled  bool          `json:"cacheEnabled"`
	CacheCapacity int           `json:"cacheCapacity"`
	HashAlgorithm string        `json:"hashAlgorithm"`
	EnableLogging bool          `json:"enableLogging"`
}

// DefaultConfig returns the stock configuration: secp256k1, 24h proof TTL,
// caching on with capacity 1000, sha-256 challenges, logging off.
func DefaultConfig() Config {
	return Config{
		Curve:         "secp256k1",
		ProofTTL:      24 * time.Hour,
		CacheEnabled:  true,
		CacheCapacity: proofcache.DefaultCapacity,
		HashAlgorithm: "sha-256",
	}
}

// ConfigPatch is a partial configuration overlay; nil fields keep their
// current value.
type ConfigPatch struct {
	Curve         *string        `json:"curve,omitempty"`
	ProofTTL      *time.Duration `json:"proofTTL,omitempty"`
	CacheEnabled  *bool          `json:"cacheEnabled,omitempty"`
	CacheCapacity *int           `json:"cacheCapacity,omitempty"`
	HashAlgorithm *string        `json:"hashAlgorithm,omitempty"`
	EnableLogging *bool          `json:"enableLogging,omitempty"`
}

// Engine owns its configuration, cache, and collaborators; multiple engines
// with different configurations can coexist in one process.
type Engine struct {
	mu     sync.RWMutex
	cfg    Config
	group  *curve.Group
	ped    *pedersen.Params
	cache  *proofcache.Cache[*Proof]
	rand   sigma.Rand
	hasher sigma.Hasher
	log    zerolog.Logger
}

// Option injects a collaborator into a new engine.
type Option func(*Engine)

// WithRand replaces the secure-randomness collaborator.
func WithRand(r sigma.Rand) Option { return func(e *Engine) { e.rand = r } }

// WithHasher replaces the hashing collaborator.
func WithHasher(h sigma.Hasher) Option { return func(e *Engine) { e.hasher = h } }

// WithLogger replaces the engine logger.
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// New validates the configuration and builds an engine. An unknown curve or
// hash algorithm fails fast; nothing is ever silently substituted.
func New(cfg Config, opts ...Option) (*Engine, error) {
	def := DefaultConfig()
	if cfg.Curve == "" {
		cfg.Curve = def.Curve
	}
	if cfg.ProofTTL <= 0 {
		cfg.ProofTTL = def.ProofTTL
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = def.CacheCapacity
	}
	if cfg.HashAlgorithm == "" {
		cfg.HashAlgorithm = def.HashAlgorithm
	}

	e := &Engine{
		cfg:    cfg,
		cache:  proofcache.New[*Proof](cfg.CacheCapacity),
		rand:   sigma.CryptoRand{},
		hasher: sigma.StdHasher{},
		log:    zerolog.Nop(),
	}
	if cfg.EnableLogging {
		e.log = zerolog.New(os.Stderr).With().Timestamp().Str("component", "zk-engine").Logger()
	}
	for _, opt := range opts {
		opt(e)
	}

	group, err := curve.NewGroup(cfg.Curve)
	if err != nil {
		return nil, err
	}
	if _, err := e.hasher.Hash(cfg.HashAlgorithm, nil); err != nil {
		return nil, err
	}
	ped, err := pedersen.Setup(group)
	if err != nil {
		return nil, err
	}
	e.group, e.ped = group, ped
	return e, nil
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// UpdateConfig applies a partial overlay. Validation runs before anything
// takes effect: an unknown curve or hash algorithm leaves the engine
// untouched.
func (e *Engine) UpdateConfig(patch ConfigPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.cfg
	if patch.Curve != nil {
		cfg.Curve = *patch.Curve
	}
	if patch.ProofTTL != nil {
		cfg.ProofTTL = *patch.ProofTTL
	}
	if patch.CacheEnabled != nil {
		cfg.CacheEnabled = *patch.CacheEnabled
	}
	if patch.CacheCapacity != nil {
		cfg.CacheCapacity = *patch.CacheCapacity
	}
	if patch.HashAlgorithm != nil {
		cfg.HashAlgorithm = *patch.HashAlgorithm
	}
	if patch.EnableLogging != nil {
		cfg.EnableLogging = *patch.EnableLogging
	}

	if cfg.ProofTTL <= 0 {
		return fmt.Errorf("proof TTL must be positive")
	}
	if cfg.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive")
	}
	group, err := curve.NewGroup(cfg.Curve)
	if err != nil {
		return err
	}
	if _, err := e.hasher.Hash(cfg.HashAlgorithm, nil); err != nil {
		return err
	}
	ped, err := pedersen.Setup(group)
	if err != nil {
		return err
	}

	if cfg.CacheCapacity != e.cfg.CacheCapacity {
		e.cache.Resize(cfg.CacheCapacity)
	}
	if cfg.EnableLogging != e.cfg.EnableLogging {
		if cfg.EnableLogging {
			e.log = zerolog.New(os.Stderr).With().Timestamp().Str("component", "zk-engine").Logger()
		} else {
			e.log = zerolog.Nop()
		}
	}
	e.cfg, e.group, e.ped = cfg, group, ped
	return nil
}

func (e *Engine) snapshot() (Config, *curve.Group, *pedersen.Params) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.group, e.ped
}

// GenerateProof validates the statement, runs the matching prover, stamps
// metadata, and caches the result if caching is enabled. Any failure returns
// a *GenerationError and caches nothing.
func (e *Engine) GenerateProof(stmt Statement) (*Proof, error) {
	cfg, group, ped := e.snapshot()
	if !stmt.Type.Valid() {
		return nil, &GenerationError{Type: stmt.Type, Err: ErrUnsupportedStatement}
	}
	if group.Degraded() {
		return nil, &GenerationError{Type: stmt.Type, Err: ErrDegradedEngine}
	}

	ts := time.Now().UTC()
	statement := canonicalStatement(stmt, ts)
	public := stmt.stripped().PublicInputs
	if public == nil {
		public = make(map[string]string)
	}

	var body Body
	var err error
	switch stmt.Type {
	case DiscreteLog:
		body, err = e.proveDiscreteLog(group, cfg, stmt, statement, public)
	case PedersenCommitment:
		body, err = e.proveOpening(group, ped, cfg, stmt, statement, public)
	case RangeProof:
		body, err = e.proveRange(group, ped, cfg, stmt, statement, public)
	case SetMembership:
		body, err = e.proveMembership(group, ped, cfg, stmt, statement, public)
	case Custom:
		body, err = e.proveCustom(group, cfg, stmt, statement, public)
	}
	if err != nil {
		e.log.Error().Str("type", string(stmt.Type)).Err(err).Msg("proof generation failed")
		return nil, &GenerationError{Type: stmt.Type, Err: err}
	}

	proof := &Proof{
		ID:               uuid.NewString(),
		Type:             stmt.Type,
		Statement:        stmt.stripped(),
		Body:             body,
		PublicInputs:     public,
		Timestamp:        ts,
		ExpiresAt:        ts.Add(cfg.ProofTTL),
		VerificationKey:  verificationKey(statement, group.Params().SecurityLevel(), ts),
		SecurityLevel:    group.Params().SecurityLevel(),
		Algorithm:        group.Name(),
		KeyLength:        group.Params().BitSize,
		QuantumResistant: false, // discrete-log assumptions fall to Shor
	}
	if cfg.CacheEnabled {
		e.cache.Put(proof)
	}
	e.log.Info().
		Str("id", proof.ID).
		Str("type", string(proof.Type)).
		Str("curve", proof.Algorithm).
		Time("expiresAt", proof.ExpiresAt).
		Msg("proof generated")
	return proof, nil
}

func (e *Engine) proveDiscreteLog(group *curve.Group, cfg Config, stmt Statement, statement []byte, public map[string]string) (Body, error) {
	secret, err := privateScalar(stmt, "secret")
	if err != nil {
		return nil, err
	}
	prover := schnorr.NewProver(group, e.rand, e.hasher, cfg.HashAlgorithm)
	pr, err := prover.Prove(secret, statement)
	if err != nil {
		return nil, err
	}
	public["publicKey"] = pr.PublicKey.Encode()
	public["generator"] = pr.Generator.Encode()
	return SchnorrBody{*pr}, nil
}

func (e *Engine) proveOpening(group *curve.Group, ped *pedersen.Params, cfg Config, stmt Statement, statement []byte, public map[string]string) (Body, error) {
	value, err := privateScalar(stmt, "value")
	if err != nil {
		return nil, err
	}
	blinding, err := e.blinding(group, stmt)
	if err != nil {
		return nil, err
	}
	pr, err := pedersen.ProveOpening(ped, value, blinding, statement, e.rand, e.hasher, cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	public["commitment"] = pr.Commitment.Encode()
	return OpeningBody{*pr}, nil
}

func (e *Engine) proveRange(group *curve.Group, ped *pedersen.Params, cfg Config, stmt Statement, statement []byte, public map[string]string) (Body, error) {
	value, err := privateScalar(stmt, "value")
	if err != nil {
		return nil, err
	}
	bound, err := publicInt(stmt, "range")
	if err != nil {
		return nil, err
	}
	// per-bit blindings are drawn inside the prover
	pr, err := pedersen.ProveRange(ped, value, bound, statement, e.rand, e.hasher, cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	public["commitment"] = pr.Commitment.Encode()
	return RangeBody{*pr}, nil
}

func (e *Engine) proveMembership(group *curve.Group, ped *pedersen.Params, cfg Config, stmt Statement, statement []byte, public map[string]string) (Body, error) {
	value, err := privateScalar(stmt, "value")
	if err != nil {
		return nil, err
	}
	raw, ok := stmt.PublicInputs["set"]
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: set", ErrMissingInput)
	}
	var set []*big.Int
	for _, part := range strings.Split(raw, ",") {
		member, ok := new(big.Int).SetString(strings.TrimSpace(part), 10)
		if !ok {
			return nil, fmt.Errorf("%w: set member %q", ErrMalformedInput, part)
		}
		set = append(set, member)
	}
	blinding, err := e.blinding(group, stmt)
	if err != nil {
		return nil, err
	}
	pr, err := pedersen.ProveMembership(ped, value, blinding, set, statement, e.rand, e.hasher, cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	public["commitment"] = pr.Commitment.Encode()
	return MembershipBody{*pr}, nil
}

func (e *Engine) proveCustom(group *curve.Group, cfg Config, stmt Statement, statement []byte, public map[string]string) (Body, error) {
	secret, err := privateScalar(stmt, "secret")
	if err != nil {
		return nil, err
	}
	base := group.Generator()
	if enc, ok := stmt.PublicInputs["generator"]; ok {
		base, err = curve.ParsePoint(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: generator", ErrMalformedInput)
		}
	}
	tr, err := sigma.Prove(group, base, secret, statement, e.rand, e.hasher, cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	public["publicValue"] = tr.PublicValue.Encode()
	return TranscriptBody{*tr}, nil
}

// blinding returns the statement's blinding scalar if supplied, otherwise a
// fresh one from the randomness collaborator.
func (e *Engine) blinding(group *curve.Group, stmt Statement) (*big.Int, error) {
	if raw, ok := stmt.PrivateInputs["blinding"]; ok {
		b, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("%w: blinding", ErrMalformedInput)
		}
		return b, nil
	}
	return e.rand.Scalar(group)
}

func privateScalar(stmt Statement, key string) (*big.Int, error) {
	raw, ok := stmt.PrivateInputs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, key)
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, key)
	}
	return v, nil
}

func publicInt(stmt Statement, key string) (*big.Int, error) {
	raw, ok := stmt.PublicInputs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, key)
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, key)
	}
	return v, nil
}

// Result is the verification outcome. Verification failures are values, not
// errors: malformed input, expiry, and component mismatches all land here.
type Result struct {
	IsValid    bool            `json:"isValid"`
	Components map[string]bool `json:"components,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

func invalid(reason string) Result {
	return Result{IsValid: false, Reason: reason}
}

// matchPublicPoint rejects records whose advertised public input disagrees
// with the point inside the proof component.
func matchPublicPoint(p *Proof, key string, point curve.Point) string {
	enc, ok := p.PublicInputs[key]
	if !ok {
		return ""
	}
	got, err := curve.ParsePoint(enc)
	if err != nil || !got.Equal(point) {
		return key + " does not match proof component"
	}
	return ""
}

// statementBoundMatches checks the statement's claimed range against the
// bound the proof component was built for. The component alone decides what
// the challenge binds, so a forged component with its own bound would verify
// against a stricter claim without this check.
func statementBoundMatches(stmt Statement, proof *pedersen.RangeProof) string {
	raw, ok := stmt.PublicInputs["range"]
	if !ok {
		return "statement missing range"
	}
	claimed, okC := new(big.Int).SetString(raw, 10)
	proved, okP := new(big.Int).SetString(proof.Bound, 10)
	if !okC || !okP {
		return "malformed bound"
	}
	if claimed.Cmp(proved) != 0 {
		return "bound does not match statement"
	}
	return ""
}

// statementSetMatches checks the statement's claimed set against the set the
// proof component carries, member by member.
func statementSetMatches(stmt Statement, proof *pedersen.MembershipProof) string {
	raw, ok := stmt.PublicInputs["set"]
	if !ok {
		return "statement missing set"
	}
	claimed := strings.Split(raw, ",")
	if len(claimed) != len(proof.Set) {
		return "set does not match statement"
	}
	for i, part := range claimed {
		want, okW := new(big.Int).SetString(strings.TrimSpace(part), 10)
		got, okG := new(big.Int).SetString(proof.Set[i], 10)
		if !okW || !okG || want.Cmp(got) != 0 {
			return "set does not match statement"
		}
	}
	return ""
}

// VerifyProof checks expiry first, then that the statement's public inputs
// agree with the parameters embedded in the proof component, then the
// component itself. Every check relevant to the type must pass; there is no
// any-of shortcut.
func (e *Engine) VerifyProof(p *Proof) Result {
	if p == nil {
		return invalid("missing proof")
	}
	if time.Now().After(p.ExpiresAt) {
		return invalid("expired")
	}
	if p.Body == nil {
		return invalid("missing proof component")
	}
	if p.Body.Kind() != p.Type {
		return invalid("component mismatch")
	}
	group, err := curve.NewGroup(p.Algorithm)
	if err != nil {
		return invalid("unknown curve")
	}
	statement := canonicalStatement(p.Statement, p.Timestamp)

	var ok bool
	var reason, component string
	switch body := p.Body.(type) {
	case SchnorrBody:
		component = "schnorrProof"
		if r := matchPublicPoint(p, "publicKey", body.PublicKey); r != "" {
			return invalid(r)
		}
		ok, reason = schnorr.Verify(group, e.hasher, &body.Proof, statement)
	case OpeningBody:
		component = "pedersenProof"
		if r := matchPublicPoint(p, "commitment", body.Commitment); r != "" {
			return invalid(r)
		}
		ped, perr := pedersen.Setup(group)
		if perr != nil {
			return invalid("pedersen setup failed")
		}
		ok, reason = pedersen.VerifyOpening(ped, &body.OpeningProof, statement, e.hasher)
	case RangeBody:
		component = "rangeProof"
		if r := statementBoundMatches(p.Statement, &body.RangeProof); r != "" {
			return invalid(r)
		}
		if r := matchPublicPoint(p, "commitment", body.Commitment); r != "" {
			return invalid(r)
		}
		ped, perr := pedersen.Setup(group)
		if perr != nil {
			return invalid("pedersen setup failed")
		}
		ok, reason = pedersen.VerifyRange(ped, &body.RangeProof, statement, e.hasher)
	case MembershipBody:
		component = "membershipProof"
		if r := statementSetMatches(p.Statement, &body.MembershipProof); r != "" {
			return invalid(r)
		}
		if r := matchPublicPoint(p, "commitment", body.Commitment); r != "" {
			return invalid(r)
		}
		ped, perr := pedersen.Setup(group)
		if perr != nil {
			return invalid("pedersen setup failed")
		}
		ok, reason = pedersen.VerifyMembership(ped, &body.MembershipProof, statement, e.hasher)
	case TranscriptBody:
		component = "fiatShamirTransform"
		if r := matchPublicPoint(p, "publicValue", body.PublicValue); r != "" {
			return invalid(r)
		}
		ok, reason = body.Transcript.Verify(group, e.hasher, statement)
	default:
		return invalid("unknown proof component")
	}

	result := Result{
		IsValid:    ok,
		Components: map[string]bool{component: ok},
		Reason:     reason,
	}
	e.log.Debug().
		Str("id", p.ID).
		Bool("isValid", result.IsValid).
		Str("reason", result.Reason).
		Msg("proof verified")
	return result
}

// GetCachedProof returns the cached proof for id; expired entries are absent.
func (e *Engine) GetCachedProof(id string) (*Proof, bool) {
	return e.cache.Get(id)
}

// RemoveCachedProof drops the cached proof for id.
func (e *Engine) RemoveCachedProof(id string) bool {
	return e.cache.Remove(id)
}

// CleanupExpiredProofs sweeps expired entries and returns the removed count.
func (e *Engine) CleanupExpiredProofs() int {
	removed := e.cache.CleanupExpired()
	if removed > 0 {
		e.log.Info().Int("removed", removed).Msg("expired proofs swept")
	}
	return removed
}

// ExportCacheData serializes the cache for a persistence handoff.
func (e *Engine) ExportCacheData() ([]byte, error) {
	return e.cache.Export()
}

// ImportCacheData restores a previously exported cache. A malformed payload
// leaves the current cache untouched.
func (e *Engine) ImportCacheData(data []byte) error {
	return e.cache.Import(data)
}

// GetProofStats reports cache statistics.
func (e *Engine) GetProofStats() proofcache.Stats {
	return e.cache.Stats()
}

// StartSweeper runs the periodic expiry sweep until ctx is cancelled. The
// sweep never blocks in-flight generate or verify calls.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.CleanupExpiredProofs()
			}
		}
	}()
}
