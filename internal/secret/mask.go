package secret

import "strings"

// maskThreshold is the minimum plaintext length that still reveals any
// characters; shorter secrets collapse to "***". The boundary and the star
// count are fixed by display-compatibility tests.
const maskThreshold = 14

// FallbackMask is the display form used when no plaintext is available to
// mask, such as a ciphertext that no longer decrypts. It matches the
// short-secret mask so callers cannot distinguish the two cases.
const FallbackMask = "***"

// Mask returns a display-safe form of a plaintext secret: the first six and
// last eight characters with fifteen stars between them, or "***" when the
// secret is shorter than fourteen characters.
func Mask(plaintext string) string {
	if len(plaintext) < maskThreshold {
		return FallbackMask
	}
	return plaintext[:6] + strings.Repeat("*", 15) + plaintext[len(plaintext)-8:]
}
