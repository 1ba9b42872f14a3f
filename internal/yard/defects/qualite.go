package defects

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

// DetailQuerier fetches the full quality record of one vehicle, for the
// detail panel.
type DetailQuerier interface {
	QueryOne(ctx context.Context, pji string) ([]model.Defect, error)
}

// qualiteClient is the deployment-specific per-vehicle variant: a GET to
// {base}/vehicules/pji/{pji}/qualite returning a nested object whose
// generalites.plistGret array holds the defect entries. An entry with a null
// dateReprise is still open.
type qualiteClient struct {
	base   string
	client *http.Client

	// openOnly drops already-repaired entries from the result.
	openOnly bool
}

// NewQualiteClient creates a DetailQuerier for the given base URL.
func NewQualiteClient(base string, timeout time.Duration) DetailQuerier {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &qualiteClient{
		base:     strings.TrimSuffix(base, "/"),
		client:   &http.Client{Timeout: timeout},
		openOnly: true,
	}
}

func (q *qualiteClient) QueryOne(ctx context.Context, pji string) ([]model.Defect, error) {
	url := fmt.Sprintf("%s/vehicules/pji/%s/qualite", q.base, pji)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quality service returned %d", resp.StatusCode)
	}

	entries := gjson.GetBytes(payload, "generalites.plistGret").Array()
	defects := make([]model.Defect, 0, len(entries))
	for _, e := range entries {
		d := model.Defect{
			Label:    e.Get("libelle").String(),
			Element:  e.Get("element").String(),
			Incident: e.Get("incident").String(),
		}
		if opened := e.Get("dateIncident"); opened.Exists() && opened.String() != "" {
			if t, err := time.Parse(time.RFC3339, opened.String()); err == nil {
				d.OpenedAt = t
			}
		}
		if repaired := e.Get("dateReprise"); repaired.Exists() && repaired.Type != gjson.Null && repaired.String() != "" {
			if t, err := time.Parse(time.RFC3339, repaired.String()); err == nil {
				d.RepairedAt = t
			}
		}

		if q.openOnly && !d.Open() {
			continue
		}
		defects = append(defects, d)
	}
	return defects, nil
}
