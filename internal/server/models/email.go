package models

import (
	"net/mail"
	"strings"

	"github.com/matoscout/api/internal/common"
)

// NormalizeEmail validates the syntax of addr and returns it lower-cased.
// Addresses with display names ("Bob <bob@x.com>") are rejected so that the
// stored value is always the bare address.
func NormalizeEmail(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", common.ErrInvalidEmail
	}

	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", common.ErrInvalidEmail
	}

	return strings.ToLower(addr), nil
}
