package scan

import (
	"errors"
	"testing"

	"github.com/yardtrack-io/yardtrack/pkg/options"
)

func numericPolicy(length int) IDPolicy {
	return NewIDPolicy(&options.ScanOptions{IDPolicy: "numeric", IDLength: length})
}

func TestIDPolicyNormalize(t *testing.T) {
	tests := []struct {
		name    string
		policy  IDPolicy
		raw     string
		want    string
		wantErr bool
	}{
		{
			name:   "exact numeric id",
			policy: numericPolicy(7),
			raw:    "0453120",
			want:   "0453120",
		},
		{
			name:   "longer numeric text truncates to the prefix",
			policy: numericPolicy(7),
			raw:    "04531209",
			want:   "0453120",
		},
		{
			name:    "trailing letters fail even past the prefix window",
			policy:  numericPolicy(7),
			raw:     "0453120XYZ",
			wantErr: true,
		},
		{
			name:   "surrounding whitespace is stripped",
			policy: numericPolicy(7),
			raw:    "  0453120\n",
			want:   "0453120",
		},
		{
			name:    "non-digit inside the window fails",
			policy:  numericPolicy(7),
			raw:     "04X3120",
			wantErr: true,
		},
		{
			name:    "empty input fails",
			policy:  numericPolicy(7),
			raw:     "   ",
			wantErr: true,
		},
		{
			name:   "freeform keeps letters",
			policy: NewIDPolicy(&options.ScanOptions{IDPolicy: "freeform", IDLength: 17}),
			raw:    "9BWZZZ377VT004251x",
			want:   "9BWZZZ377VT004251",
		},
		{
			name:   "none passes anything non-empty through",
			policy: NewIDPolicy(&options.ScanOptions{IDPolicy: "none"}),
			raw:    "whatever-goes",
			want:   "whatever-goes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Normalize(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeTagSerial(t *testing.T) {
	tests := []struct {
		name    string
		serial  string
		want    string
		wantErr bool
	}{
		{
			name:   "colon-delimited hex converts to decimal",
			serial: "04:d1:6c:92:ab:1f:90",
			want:   "1356164154204048",
		},
		{
			name:   "plain hex without delimiters",
			serial: "04d16c",
			want:   "315756",
		},
		{
			name:    "empty serial fails",
			serial:  "  ",
			wantErr: true,
		},
		{
			name:    "non-hex serial fails",
			serial:  "zz:zz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTagSerial(tt.serial)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeTagSerial(%q) = %q, want %q", tt.serial, got, tt.want)
			}
		})
	}
}
