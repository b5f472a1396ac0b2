// Package nanoid generates document ids.
package nanoid

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	// Alphabet is URL safe and free of separators.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Size of generated ids.
	Size = 20
)

// New returns a random id of Size characters from Alphabet.
func New() (string, error) {
	return gonanoid.Generate(Alphabet, Size)
}

// IsID reports whether id could have come from New.
func IsID(id string) bool {
	if len(id) != Size {
		return false
	}
	for _, c := range id {
		if !isAlnum(c) {
			return false
		}
	}
	return true
}

func isAlnum(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
