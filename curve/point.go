package curve

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Point is an affine point (x, y). The zero value (both coordinates nil or
// zero) stands for the point at infinity, matching the crypto/elliptic
// convention.
type Point struct {
	X *big.Int
	Y *big.Int
}

// NewPoint copies the given coordinates into a Point.
func NewPoint(x, y *big.Int) Point {
	return Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// Infinity returns the point at infinity.
func Infinity() Point {
	return Point{X: new(big.Int), Y: new(big.Int)}
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.X == nil || p.Y == nil || (p.X.Sign() == 0 && p.Y.Sign() == 0)
}

// Equal reports coordinate equality.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Encode renders the point as "xhex:yhex".
func (p Point) Encode() string {
	if p.IsInfinity() {
		return "0:0"
	}
	return p.X.Text(16) + ":" + p.Y.Text(16)
}

// ParsePoint decodes a point produced by Encode. It rejects anything that is
// not a pair of non-negative hex integers.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("malformed point encoding %q", s)
	}
	x, okX := new(big.Int).SetString(parts[0], 16)
	y, okY := new(big.Int).SetString(parts[1], 16)
	if !okX || !okY || x.Sign() < 0 || y.Sign() < 0 {
		return Point{}, fmt.Errorf("malformed point coordinates %q", s)
	}
	return Point{X: x, Y: y}, nil
}

type pointJSON struct {
	X string `json:"x"`
	Y string `json:"y"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	if p.X == nil || p.Y == nil {
		return json.Marshal(pointJSON{X: "0", Y: "0"})
	}
	return json.Marshal(pointJSON{X: p.X.Text(16), Y: p.Y.Text(16)})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw pointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	x, okX := new(big.Int).SetString(raw.X, 16)
	y, okY := new(big.Int).SetString(raw.Y, 16)
	if !okX || !okY || x.Sign() < 0 || y.Sign() < 0 {
		return fmt.Errorf("malformed point coordinates")
	}
	p.X, p.Y = x, y
	return nil
}
