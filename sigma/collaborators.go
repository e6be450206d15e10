package sigma

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/zkid-labs/sigma-proofs/curve"
)

// Rand supplies uniform secret scalars. The engine never draws entropy by ad
// hoc means; everything goes through this collaborator.
type Rand interface {
	// Scalar returns a uniform scalar in [1, n-1] for the group.
	Scalar(g *curve.Group) (*big.Int, error)
}

// Hasher supplies the digest primitive for challenge derivation.
type Hasher interface {
	Hash(algorithm string, data []byte) ([]byte, error)
}

// ErrUnknownHash is returned for unsupported hash algorithm names.
var ErrUnknownHash = fmt.Errorf("unknown hash algorithm")

// CryptoRand draws scalars from crypto/rand.
type CryptoRand struct{}

func (CryptoRand) Scalar(g *curve.Group) (*big.Int, error) {
	max := new(big.Int).Sub(g.Order(), big.NewInt(1))
	k, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("drawing scalar: %w", err)
	}
	return k.Add(k, big.NewInt(1)), nil
}

// StdHasher implements Hasher over the SHA-2 and SHA-3 families.
type StdHasher struct{}

func (StdHasher) Hash(algorithm string, data []byte) ([]byte, error) {
	var h hash.Hash
	switch algorithm {
	case "sha-256":
		h = sha256.New()
	case "sha-512":
		h = sha512.New()
	case "sha3-256":
		h = sha3.New256()
	case "keccak-256":
		h = sha3.NewLegacyKeccak256()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHash, algorithm)
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// Algorithms lists the hash algorithm names StdHasher accepts.
func Algorithms() []string {
	return []string{"sha-256", "sha-512", "sha3-256", "keccak-256"}
}
