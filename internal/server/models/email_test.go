package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matoscout/api/internal/common"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "user@example.com", "user@example.com", false},
		{"upper-cased", "User@Example.COM", "user@example.com", false},
		{"surrounding spaces", "  user@example.com ", "user@example.com", false},
		{"empty", "", "", true},
		{"missing domain", "user@", "", true},
		{"missing local part", "@example.com", "", true},
		{"display name rejected", "Bob <bob@example.com>", "", true},
		{"spaces inside", "us er@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidEmail)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
