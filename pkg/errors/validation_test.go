package errors

import (
	"strings"
	"testing"
)

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "fabric", false},
		{"valid with dash", "dc-fabric-1", false},
		{"valid with underscore", "ipv6_graph", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "a/b", true},
		{"dot", "a.b", true},
		{"space", "a b", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCollectionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateVertexID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"collection id", "igp_node/2_0_0_0000.0000.0001", false},
		{"bare id", "r1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 600), true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVertexID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVertexID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"http://localhost:8000/api/v1", false},
		{"https://example.com", false},
		{"", true},
		{"ftp://example.com", true},
		{"localhost:8000", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
