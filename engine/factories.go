package engine

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	mt "github.com/txaty/go-merkletree"
	"golang.org/x/crypto/sha3"
)

// Statement factories translate higher-level identity claims into proof
// statements. They contain no cryptography beyond hashing attribute strings
// to scalars; the engine's generators do the proving.

// ageRangeBound caps the provable age margin: age-over claims prove
// 0 <= age - threshold < 128.
const ageRangeBound = 128

// AgeOverStatement claims the holder's age is at least threshold without
// revealing the age. An age below the threshold produces a statement whose
// proof generation fails, which is the correct outcome for a false claim.
func AgeOverStatement(age, threshold int) Statement {
	return Statement{
		Type:        RangeProof,
		Description: fmt.Sprintf("age is at least %d", threshold),
		Relation:    "0 <= age - threshold < range",
		PublicInputs: map[string]string{
			"claim":     "age_over",
			"threshold": strconv.Itoa(threshold),
			"range":     strconv.Itoa(ageRangeBound),
		},
		PrivateInputs: map[string]string{
			"value": strconv.Itoa(age - threshold),
		},
	}
}

// CredentialStatement claims knowledge of the private key behind a
// credential's public key.
func CredentialStatement(credentialID string, secretKey *big.Int) Statement {
	return Statement{
		Type:        DiscreteLog,
		Description: "holder knows the credential private key",
		Relation:    "y = g^x",
		PublicInputs: map[string]string{
			"credentialId": credentialID,
		},
		PrivateInputs: map[string]string{
			"secret": secretKey.String(),
		},
	}
}

// PermissionStatement claims the held permission is one of the granted set
// without revealing which. The set members are hashed to scalars; the full
// set rides in the statement and is additionally fingerprinted under a
// keccak merkle root so collaborators can reference it compactly.
func PermissionStatement(permission string, granted []string) (Statement, error) {
	if len(granted) == 0 {
		return Statement{}, fmt.Errorf("empty permission set")
	}
	members := make([]string, len(granted))
	for i, p := range granted {
		members[i] = hashToScalar(p).String()
	}
	root, err := setRoot(granted)
	if err != nil {
		return Statement{}, fmt.Errorf("fingerprinting permission set: %w", err)
	}
	return Statement{
		Type:        SetMembership,
		Description: "held permission is in the granted set",
		Relation:    "value in set",
		PublicInputs: map[string]string{
			"claim":   "permission",
			"set":     strings.Join(members, ","),
			"setRoot": root,
		},
		PrivateInputs: map[string]string{
			"value": hashToScalar(permission).String(),
		},
	}, nil
}

// SelectiveDisclosureStatement commits to one credential attribute so the
// holder can later prove facts about it without disclosing the rest.
func SelectiveDisclosureStatement(attribute, value string) Statement {
	return Statement{
		Type:        PedersenCommitment,
		Description: fmt.Sprintf("commitment to attribute %q", attribute),
		Relation:    "C = g^m h^r",
		PublicInputs: map[string]string{
			"attribute": attribute,
		},
		PrivateInputs: map[string]string{
			"value": hashToScalar(value).String(),
		},
	}
}

// hashToScalar maps an attribute string to a scalar via keccak-256.
func hashToScalar(s string) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return new(big.Int).SetBytes(h.Sum(nil))
}

type setLeaf []byte

func (l setLeaf) Serialize() ([]byte, error) { return l, nil }

func keccakHashFunc(data []byte) ([]byte, error) {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil), nil
}

// setRoot builds a keccak merkle root over the set members.
func setRoot(members []string) (string, error) {
	blocks := make([]mt.DataBlock, 0, len(members)+1)
	for _, m := range members {
		blocks = append(blocks, setLeaf(m))
	}
	// the tree needs at least two leaves
	if len(blocks) == 1 {
		blocks = append(blocks, setLeaf(nil))
	}
	tree, err := mt.New(&mt.Config{HashFunc: keccakHashFunc, Mode: mt.ModeTreeBuild}, blocks)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(tree.Root), nil
}
