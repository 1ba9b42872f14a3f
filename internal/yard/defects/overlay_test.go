package defects

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

type fakeQuerier struct {
	mu      sync.Mutex
	records []Record
	err     error

	lastPJIs   []string
	lastLabels []string
}

func (q *fakeQuerier) Query(ctx context.Context, pjis, labels []string) ([]Record, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastPJIs = pjis
	q.lastLabels = labels
	if q.err != nil {
		return nil, q.err
	}
	return q.records, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (n *recordingNotifier) Info(msg string)    { n.mu.Lock(); n.infos = append(n.infos, msg); n.mu.Unlock() }
func (n *recordingNotifier) Success(msg string) { n.mu.Lock(); n.infos = append(n.infos, msg); n.mu.Unlock() }
func (n *recordingNotifier) Error(msg string)   { n.mu.Lock(); n.errors = append(n.errors, msg); n.mu.Unlock() }

func TestFetchForAllRebuildsIndex(t *testing.T) {
	q := &fakeQuerier{records: []Record{
		{PJI: "656250453120", Label: "ABERTO: RUIDO", Element: "PORTA", Incident: "RANGIDO"},
		{PJI: "656250453120", Label: "ABERTO: ASPECTO", Element: "CAPO", Incident: "RISCO"},
		{PJI: "656250453121", Label: "ABERTO: GEOMETRIA", Element: "RODA", Incident: "ALINHAMENTO"},
	}}
	o := NewOverlay(q, nil, NewPJI("65625"), nil, &recordingNotifier{})

	o.FetchForAll(context.Background(), []string{"0453120", "0453121"})

	index := o.Index()
	if len(index) != 2 {
		t.Fatalf("expected 2 vehicles in the index, got %d", len(index))
	}
	if got := index.FirstLabel("0453120"); got != "ABERTO: RUIDO" {
		t.Errorf("FirstLabel = %q", got)
	}
	if len(index["0453120"]) != 2 {
		t.Errorf("expected 2 defects for 0453120, got %+v", index["0453120"])
	}

	wantPJIs := []string{"656250453120", "656250453121"}
	if diff := cmp.Diff(wantPJIs, q.lastPJIs); diff != "" {
		t.Errorf("queried PJIs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultFilterLabels, q.lastLabels); diff != "" {
		t.Errorf("nil label set should query the defaults (-want +got):\n%s", diff)
	}
}

func TestFetchForAllFailureKeepsPreviousIndex(t *testing.T) {
	q := &fakeQuerier{records: []Record{
		{PJI: "656250453120", Label: "ABERTO: RUIDO"},
	}}
	n := &recordingNotifier{}
	o := NewOverlay(q, nil, NewPJI("65625"), nil, n)

	o.FetchForAll(context.Background(), []string{"0453120"})
	if len(o.Index()) != 1 {
		t.Fatal("first fetch did not populate the index")
	}

	q.err = errors.New("service down")
	o.FetchForAll(context.Background(), []string{"0453120"})

	if len(o.Index()) != 1 {
		t.Error("failed refresh must keep the previous index")
	}
	if len(n.errors) == 0 {
		t.Error("failed refresh must notify the operator")
	}
}

func TestFetchForAllEmptyYardClearsIndex(t *testing.T) {
	q := &fakeQuerier{records: []Record{
		{PJI: "656250453120", Label: "ABERTO: RUIDO"},
	}}
	n := &recordingNotifier{}
	o := NewOverlay(q, nil, NewPJI("65625"), nil, n)

	o.FetchForAll(context.Background(), []string{"0453120"})
	if len(o.Index()) != 1 {
		t.Fatal("first fetch did not populate the index")
	}

	// Any service call would now fail, so an empty index proves the refresh
	// skipped the network and still dropped the stale entries.
	q.err = errors.New("service down")
	o.FetchForAll(context.Background(), nil)

	if len(o.Index()) != 0 {
		t.Errorf("refresh with no vehicles must clear the index, got %v", o.Index())
	}
	if len(n.errors) != 0 {
		t.Errorf("no service call expected, got errors %v", n.errors)
	}
}

func TestFetchForOnePrefersDetailQuerier(t *testing.T) {
	q := &fakeQuerier{}
	detail := detailFunc(func(ctx context.Context, pji string) ([]model.Defect, error) {
		if pji != "656250453120" {
			t.Errorf("detail queried with %q", pji)
		}
		return []model.Defect{{Label: "ABERTO: RUIDO"}}, nil
	})
	o := NewOverlay(q, detail, NewPJI("65625"), nil, &recordingNotifier{})

	defects := o.FetchForOne(context.Background(), "0453120")
	if len(defects) != 1 || defects[0].Label != "ABERTO: RUIDO" {
		t.Fatalf("unexpected defects: %+v", defects)
	}
	if q.lastPJIs != nil {
		t.Error("batch querier must not be hit when a detail querier exists")
	}
}

type detailFunc func(ctx context.Context, pji string) ([]model.Defect, error)

func (f detailFunc) QueryOne(ctx context.Context, pji string) ([]model.Defect, error) {
	return f(ctx, pji)
}

func TestFilterIDs(t *testing.T) {
	q := &fakeQuerier{records: []Record{
		{PJI: "656250453120", Label: "ABERTO: RUIDO"},
		{PJI: "656250453120", Label: "ABERTO: RUIDO"},
		{PJI: "656250453122", Label: "ABERTO: RUIDO"},
	}}
	n := &recordingNotifier{}
	o := NewOverlay(q, nil, NewPJI("65625"), nil, n)

	ids := o.FilterIDs(context.Background(), []string{"0453120", "0453121", "0453122"}, []string{"ABERTO: RUIDO"})

	want := []string{"0453120", "0453122"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("matched ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterIDsGuards(t *testing.T) {
	q := &fakeQuerier{}
	n := &recordingNotifier{}
	o := NewOverlay(q, nil, NewPJI("65625"), nil, n)

	if ids := o.FilterIDs(context.Background(), []string{"0453120"}, nil); ids != nil {
		t.Errorf("no labels selected must not query, got %v", ids)
	}
	if ids := o.FilterIDs(context.Background(), nil, []string{"ABERTO: RUIDO"}); ids != nil {
		t.Errorf("empty yard must not query, got %v", ids)
	}
	if q.lastPJIs != nil {
		t.Error("guards must short-circuit before the service call")
	}
	if len(n.errors) != 2 {
		t.Errorf("each guard should notify once, got %v", n.errors)
	}
}
