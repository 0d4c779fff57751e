package xld

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const hexAddressLength = 40

// IsHexAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Letter case is not checked.
func IsHexAddress(s string) bool {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != hexAddressLength {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of an EVM address.
// It returns "" when s is not a hex address.
func ChecksumAddress(s string) string {
	if !IsHexAddress(s) {
		return ""
	}
	lower := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := make([]byte, 0, len(lower)+2)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		ch := lower[i]
		if ch >= 'a' && ch <= 'f' && digest[i] >= '8' {
			ch -= 'a' - 'A'
		}
		out = append(out, ch)
	}
	return string(out)
}

// ValidChecksum reports whether s is a hex address whose letter case is
// either uniform or a correct EIP-55 checksum.
func ValidChecksum(s string) bool {
	if !IsHexAddress(s) {
		return false
	}
	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ChecksumAddress(s) == "0x"+body
}
