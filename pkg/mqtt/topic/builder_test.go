package topic

import "testing"

func TestBuilder(t *testing.T) {
	b := NewBuilder("yard/v1")

	if got := b.Vehicle("rec-42"); got != "yard/v1/vehicles/rec-42" {
		t.Errorf("Vehicle() = %q", got)
	}
	if got := b.VehiclesWildcard(); got != "yard/v1/vehicles/+" {
		t.Errorf("VehiclesWildcard() = %q", got)
	}
}

func TestRecordID(t *testing.T) {
	b := NewBuilder("yard/v1")

	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{"concrete vehicle topic", "yard/v1/vehicles/rec-42", "rec-42"},
		{"foreign namespace", "other/v1/vehicles/rec-42", ""},
		{"nested segment is not a record", "yard/v1/vehicles/rec-42/extra", ""},
		{"collection root itself", "yard/v1/vehicles/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.RecordID(tt.topic); got != tt.want {
				t.Errorf("RecordID(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}
