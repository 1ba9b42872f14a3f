package listview

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uitable"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

// Renderer writes the projected vehicle list as a terminal table. It is the
// agent's list surface: one row per projected vehicle, most recent first,
// re-rendered on every projection change.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render replaces the rendered list with the given projection.
func (r *Renderer) Render(vehicles []model.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(vehicles) == 0 {
		fmt.Fprintln(r.out, "No vehicles found. Try adjusting the filters.")
		return
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("STATUS", "VEHICLE", "TAG", "SEEN")
	for _, v := range vehicles {
		table.AddRow(v.Status.DisplayLabel(), v.VehicleID, v.TagID, TimeAgo(v.ObservedAt, time.Now()))
	}

	fmt.Fprintln(r.out, table)
}

// TimeAgo formats the time elapsed since t as a coarse human phrase.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t).Seconds())
	if seconds < 60 {
		return "just now"
	}

	intervals := []struct {
		unit    string
		seconds int64
	}{
		{"year", 31536000},
		{"month", 2592000},
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
	}

	for _, iv := range intervals {
		if n := seconds / iv.seconds; n >= 1 {
			if n > 1 {
				return fmt.Sprintf("%d %ss ago", n, iv.unit)
			}
			return fmt.Sprintf("1 %s ago", iv.unit)
		}
	}
	return "just now"
}
