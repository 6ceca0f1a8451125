package waitlist

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet is the 32-symbol set used for access codes. Visually ambiguous
// characters (I, 1, O, 0) are excluded so codes survive being read aloud or
// hand-typed.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codePrefix      = "OSIA"
	codeSegments    = 3
	codeSegmentSize = 4
)

// GenerateAccessCode produces a code of the form OSIA-XXXX-XXXX-XXXX drawn
// uniformly from the unambiguous alphabet. Codes are unguessable but not
// guaranteed unique; validation always pairs a code with an email, so an
// accidental collision between two members is harmless.
func GenerateAccessCode() (string, error) {
	code := codePrefix
	max := big.NewInt(int64(len(codeAlphabet)))
	for s := 0; s < codeSegments; s++ {
		code += "-"
		for i := 0; i < codeSegmentSize; i++ {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("failed to read random bytes: %w", err)
			}
			code += string(codeAlphabet[n.Int64()])
		}
	}
	return code, nil
}
