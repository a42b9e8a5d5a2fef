// Package simhash computes 64-bit SimHash fingerprints used to tell whether
// two captures of a page share the same structure.
package simhash

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strings"
)

// Feature is one weighted token contributing to a fingerprint.
type Feature struct {
	Token  string
	Weight int
}

// Compute folds weighted features into a SimHash. Each feature's FNV-64a
// hash votes +Weight or -Weight on every bit. No features yields 0.
func Compute(features []Feature) uint64 {
	if len(features) == 0 {
		return 0
	}

	var vector [64]int
	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f.Token))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i] += f.Weight
			} else {
				vector[i] -= f.Weight
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}
	return fingerprint
}

// Fingerprint computes the SimHash of whitespace-separated words, each with
// weight 1.
func Fingerprint(text string) uint64 {
	words := strings.Fields(text)
	features := make([]Feature, len(words))
	for i, w := range words {
		features[i] = Feature{Token: w, Weight: 1}
	}
	return Compute(features)
}

// Hex renders a fingerprint as 16 lowercase hex digits.
func Hex(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Distance returns the Hamming distance between two SimHash fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
