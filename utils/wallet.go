package utils

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// IsHexAddress reports whether s has the 0x-prefixed 20-byte hex shape.
func IsHexAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	body := s[2:]
	if len(body) != 40 {
		return false
	}
	_, err := hex.DecodeString(body)
	return err == nil
}

// ChecksumAddress returns the EIP-55 mixed-case form of a hex address:
// each hex letter is uppercased when the corresponding nibble of the
// Keccak-256 hash of the lowercase address body is >= 8.
func ChecksumAddress(s string) (string, error) {
	if !IsHexAddress(s) {
		return "", fmt.Errorf("not a hex address: %q", s)
	}

	body := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(body))
	hash := h.Sum(nil)

	out := []byte(body)
	for i := 0; i < len(out); i++ {
		c := out[i]
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}

	return "0x" + string(out), nil
}

// ValidWalletAddress accepts all-lowercase, all-uppercase, or correctly
// checksummed mixed-case hex addresses. A mixed-case address with a bad
// checksum is rejected as a likely typo.
func ValidWalletAddress(s string) bool {
	if !IsHexAddress(s) {
		return false
	}

	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}

	checksummed, err := ChecksumAddress(s)
	if err != nil {
		return false
	}
	return "0x"+body == checksummed
}
