package defects

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestQualiteClientQueryOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vehicules/pji/656250453120/qualite" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"generalites": {
				"plistGret": [
					{
						"libelle": "ABERTO: RUIDO",
						"element": "PORTA DIANT ESQ",
						"incident": "RANGIDO",
						"dateIncident": "2026-08-28T09:30:00Z",
						"dateReprise": null
					},
					{
						"libelle": "ABERTO: ASPECTO",
						"element": "CAPO",
						"incident": "RISCO",
						"dateIncident": "2026-08-20T08:00:00Z",
						"dateReprise": "2026-08-21T10:00:00Z"
					}
				]
			}
		}`))
	}))
	defer srv.Close()

	q := NewQualiteClient(srv.URL, time.Second)
	defects, err := q.QueryOne(context.Background(), "656250453120")
	if err != nil {
		t.Fatalf("QueryOne: %v", err)
	}

	// The repaired entry is dropped; only the open one survives.
	if len(defects) != 1 {
		t.Fatalf("expected 1 open defect, got %d: %+v", len(defects), defects)
	}
	d := defects[0]
	if d.Label != "ABERTO: RUIDO" || d.Element != "PORTA DIANT ESQ" || d.Incident != "RANGIDO" {
		t.Errorf("unexpected defect: %+v", d)
	}
	if !d.Open() {
		t.Error("null dateReprise must mean the defect is still open")
	}
}

func TestQualiteClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	q := NewQualiteClient(srv.URL, time.Second)
	if _, err := q.QueryOne(context.Background(), "656250000000"); err == nil {
		t.Fatal("expected an error on HTTP 404")
	}
}
