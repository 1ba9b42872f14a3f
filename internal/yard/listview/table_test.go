package listview

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-10 * time.Minute), "10 minutes ago"},
		{"one hour", now.Add(-time.Hour), "1 hour ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"one day", now.Add(-25 * time.Hour), "1 day ago"},
		{"days", now.Add(-72 * time.Hour), "3 days ago"},
		{"months", now.Add(-31 * 24 * time.Hour), "1 month ago"},
		{"years", now.Add(-800 * 24 * time.Hour), "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeAgo(tt.t, now); got != tt.want {
				t.Errorf("TimeAgo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	r.Render([]model.Vehicle{
		{VehicleID: "1000001", Status: model.StatusParked, TagID: "315756", ObservedAt: time.Now()},
		{VehicleID: "1000002", Status: model.StatusShipped, ObservedAt: time.Now().Add(-2 * time.Hour)},
	})

	out := buf.String()
	for _, want := range []string{"STATUS", "1000001", "1000002", "Parked", "Shipped", "315756", "2 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf).Render(nil)

	if !strings.Contains(buf.String(), "No vehicles found. Try adjusting the filters.") {
		t.Errorf("empty projection message missing:\n%s", buf.String())
	}
}
