package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yardtrack-io/yardtrack/internal/yard/geo"
	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/notify"
	"github.com/yardtrack-io/yardtrack/internal/yard/scan"
	"github.com/yardtrack-io/yardtrack/internal/yard/view"
	genericoptions "github.com/yardtrack-io/yardtrack/pkg/options"
)

// fakeController implements Controller over a static snapshot.
type fakeController struct {
	vehicles []model.Vehicle
	state    view.State

	focused  []string
	statuses map[string]model.Status
	detailed []string
}

func newFakeController(vehicles ...model.Vehicle) *fakeController {
	return &fakeController{
		vehicles: vehicles,
		state:    view.NewState(),
		statuses: map[string]model.Status{},
	}
}

func (c *fakeController) Projection() []model.Vehicle { return c.vehicles }
func (c *fakeController) ViewState() view.State       { return c.state }
func (c *fakeController) SetStatusFilter(f string)    { c.state.StatusFilter = f }
func (c *fakeController) SetSearch(t string)          { c.state.SearchText = t }
func (c *fakeController) ApplyDefectFilter(ctx context.Context, labels []string) {}
func (c *fakeController) Refresh(ctx context.Context)                            {}
func (c *fakeController) Focus(recordID string) {
	c.focused = append(c.focused, recordID)
}

func (c *fakeController) FindByRecordID(recordID string) (model.Vehicle, bool) {
	for _, v := range c.vehicles {
		if v.RecordID == recordID {
			return v, true
		}
	}
	return model.Vehicle{}, false
}

func (c *fakeController) ShowDetail(ctx context.Context, v model.Vehicle) []model.Defect {
	c.detailed = append(c.detailed, v.VehicleID)
	return []model.Defect{{Label: "ABERTO: RUIDO"}}
}

func (c *fakeController) UpdateStatus(ctx context.Context, recordID string, status model.Status) error {
	c.statuses[recordID] = status
	return nil
}

func newTestServer(t *testing.T, ctrl Controller) *httptest.Server {
	t.Helper()
	scanner := scan.NewCoordinator(scan.Config{
		Policy:    scan.NewIDPolicy(nil),
		TagSource: "none",
		Location:  geo.NewFixedProvider(model.Position{}),
		Store:     nopUpserter{},
		Notifier:  notify.Nop(),
	})
	s := NewServer(genericoptions.NewHttpOptions(), ctrl, scanner, func() bool { return true })
	srv := httptest.NewServer(s.srv.Handler)
	t.Cleanup(srv.Close)
	return srv
}

type nopUpserter struct{}

func (nopUpserter) Upsert(ctx context.Context, vehicleID string, pos model.Position, tagID string) error {
	return nil
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListVehicles(t *testing.T) {
	ctrl := newFakeController(model.Vehicle{RecordID: "r1", VehicleID: "1000001"})
	srv := newTestServer(t, ctrl)

	resp, err := http.Get(srv.URL + "/api/v1/vehicles")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got []model.Vehicle
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].VehicleID != "1000001" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestSetView(t *testing.T) {
	ctrl := newFakeController()
	srv := newTestServer(t, ctrl)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/view", `{"statusFilter": "parked", "searchText": "100"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ctrl.state.StatusFilter != "parked" || ctrl.state.SearchText != "100" {
		t.Errorf("view state not applied: %+v", ctrl.state)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/view", `{"statusFilter": "impounded"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status filter accepted: %d", resp.StatusCode)
	}
	if ctrl.state.StatusFilter != "parked" {
		t.Errorf("rejected filter must not touch the view state: %+v", ctrl.state)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/view", `{"statusFilter": "all"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("filter reset rejected: %d", resp.StatusCode)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	ctrl := newFakeController(model.Vehicle{RecordID: "r1", VehicleID: "1000001"})
	srv := newTestServer(t, ctrl)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/vehicles/r1/status", `{"status": "shipped"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ctrl.statuses["r1"] != model.StatusShipped {
		t.Errorf("status write missing: %+v", ctrl.statuses)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/vehicles/r1/status", `{"status": "teleported"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status accepted: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/vehicles/r-missing/status", `{"status": "shipped"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown record accepted: %d", resp.StatusCode)
	}
}

func TestVehicleDefectsEndpoint(t *testing.T) {
	ctrl := newFakeController(model.Vehicle{RecordID: "r1", VehicleID: "1000001"})
	srv := newTestServer(t, ctrl)

	resp, err := http.Get(srv.URL + "/api/v1/vehicles/r1/defects")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		Vehicle model.Vehicle  `json:"vehicle"`
		Defects []model.Defect `json:"defects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Vehicle.RecordID != "r1" || len(got.Defects) != 1 {
		t.Fatalf("unexpected body: %+v", got)
	}
	if len(ctrl.detailed) != 1 {
		t.Error("detail flow not invoked")
	}
}

func TestScanLifecycleEndpoints(t *testing.T) {
	ctrl := newFakeController()
	srv := newTestServer(t, ctrl)

	// No camera is wired, so opening lands in manual entry.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/scan", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open status = %d", resp.StatusCode)
	}
	var state map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state["state"] != scan.StateManual {
		t.Fatalf("state after open = %q", state["state"])
	}

	// A second open conflicts.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/scan", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second open = %d, want conflict", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/scan", nil)
	cresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer cresp.Body.Close()
	if cresp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", cresp.StatusCode)
	}

	gresp, err := http.Get(srv.URL + "/api/v1/scan")
	if err != nil {
		t.Fatal(err)
	}
	defer gresp.Body.Close()
	if err := json.NewDecoder(gresp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state["state"] != scan.StateIdle {
		t.Errorf("state after cancel = %q", state["state"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, newFakeController())

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s = %d", path, resp.StatusCode)
		}
	}
}
