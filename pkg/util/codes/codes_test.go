package codes

import (
	"strings"
	"testing"
)

func TestGenerateBookingReference(t *testing.T) {
	ref, err := GenerateBookingReference()
	if err != nil {
		t.Fatalf("GenerateBookingReference() error = %v", err)
	}

	if !strings.HasPrefix(ref, ReferencePrefix+"-") {
		t.Errorf("GenerateBookingReference() = %q, want prefix %q", ref, ReferencePrefix+"-")
	}

	// BKL-XXXX-XXXX
	parts := strings.Split(ref, "-")
	if len(parts) != 3 {
		t.Fatalf("GenerateBookingReference() = %q, want 3 dash-separated groups", ref)
	}
	if len(parts[1]) != 4 || len(parts[2]) != 4 {
		t.Errorf("GenerateBookingReference() groups = %q %q, want length 4 each", parts[1], parts[2])
	}

	for _, r := range parts[1] + parts[2] {
		if !strings.ContainsRune(charsetReference, r) {
			t.Errorf("GenerateBookingReference() contains %q outside charset", r)
		}
	}
}

func TestGenerateBookingReferenceUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := GenerateBookingReference()
		if err != nil {
			t.Fatalf("GenerateBookingReference() error = %v", err)
		}
		if seen[ref] {
			t.Fatalf("GenerateBookingReference() produced duplicate %q", ref)
		}
		seen[ref] = true
	}
}

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		charset string
		wantErr bool
	}{
		{name: "valid", length: 8, charset: charsetReference, wantErr: false},
		{name: "zero length", length: 0, charset: charsetReference, wantErr: true},
		{name: "negative length", length: -3, charset: charsetReference, wantErr: true},
		{name: "empty charset", length: 8, charset: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateCode(tt.length, tt.charset)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateCode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(code) != tt.length {
				t.Errorf("GenerateCode() len = %d, want %d", len(code), tt.length)
			}
		})
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		groupSize int
		want      string
	}{
		{name: "even groups", code: "ABCD1234", groupSize: 4, want: "ABCD-1234"},
		{name: "uneven tail", code: "ABCDE", groupSize: 2, want: "AB-CD-E"},
		{name: "shorter than group", code: "AB", groupSize: 4, want: "AB"},
		{name: "zero group size", code: "ABCD", groupSize: 0, want: "ABCD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCode(tt.code, tt.groupSize); got != tt.want {
				t.Errorf("FormatCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "formatted", in: "BKL-ABCD-2345", want: "BKLABCD2345"},
		{name: "lowercase with spaces", in: " bkl abcd 2345 ", want: "BKLABCD2345"},
		{name: "already bare", in: "BKLABCD2345", want: "BKLABCD2345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseReference(tt.in); got != tt.want {
				t.Errorf("ParseReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseReferenceRoundTrip(t *testing.T) {
	ref, err := GenerateBookingReference()
	if err != nil {
		t.Fatalf("GenerateBookingReference() error = %v", err)
	}

	bare := ParseReference(ref)
	if strings.Contains(bare, "-") {
		t.Errorf("ParseReference() left dashes in %q", bare)
	}
	if len(bare) != len(ReferencePrefix)+ReferenceLength {
		t.Errorf("ParseReference() len = %d, want %d", len(bare), len(ReferencePrefix)+ReferenceLength)
	}
}
