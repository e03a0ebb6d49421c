// Package grade maps the classifier's grade classes to what a student gets to see.
package grade

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Class is the academic performance class produced by the classifier.
type Class int

const (
	A Class = iota
	B
	C
	D
	F

	Unknown Class = -1
)

// ErrUnusableScore is returned for scores that cannot be rounded to a Class.
var ErrUnusableScore = errors.New("unusable score")

// Valid reports whether c is one of A, B, C, D or F.
func (c Class) Valid() bool { return c >= A && c <= F }

// NeedsHelp reports whether c is D or F.
func (c Class) NeedsHelp() bool { return c == D || c == F }

func (c Class) Letter() string {
	if !c.Valid() {
		return "?"
	}
	return "ABCDF"[c : c+1]
}

func (c Class) String() string {
	if !c.Valid() {
		return "Unknown(" + strconv.Itoa(int(c)) + ")"
	}
	return c.Letter()
}

// FromScore rounds a raw classifier score half away from zero.
// Out of range results are returned as is and interpreted as unknown.
func FromScore(score float64) (Class, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Unknown, errors.Wrapf(ErrUnusableScore, "%v", score)
	}
	r := math.Round(score)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return Unknown, nil
	}
	return Class(r), nil
}
