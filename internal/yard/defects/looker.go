package defects

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Record is one defect row returned by the label-scoped query service.
type Record struct {
	PJI      string
	Label    string
	Element  string
	Incident string
}

// Querier is the label-scoped defect query service.
type Querier interface {
	// Query returns every defect row matching any of the given labels for
	// any of the given PJIs.
	Query(ctx context.Context, pjis, labels []string) ([]Record, error)
}

// lookerClient calls the reporting service's batch endpoint: a POST carrying
// comma-joined PJIs and labels, answered with a flat JSON array whose field
// names are dotted explore paths.
type lookerClient struct {
	endpoint string
	client   *http.Client
}

// NewLookerClient creates a Querier for the given endpoint.
func NewLookerClient(endpoint string, timeout time.Duration) Querier {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &lookerClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (l *lookerClient) Query(ctx context.Context, pjis, labels []string) ([]Record, error) {
	body, err := json.Marshal(map[string]string{
		"pjis":   strings.Join(pjis, ","),
		"labels": strings.Join(labels, ","),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("defect service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	rows := gjson.ParseBytes(payload).Array()
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			PJI:      row.Get(`vehicle\.PJI`).String(),
			Label:    row.Get(`vehicle_production_defect\.repair_code_label`).String(),
			Element:  row.Get(`element_final\.element_label`).String(),
			Incident: row.Get(`incident_final\.incident_label`).String(),
		})
	}
	return records, nil
}
