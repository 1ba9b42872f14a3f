package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
	"github.com/yardtrack-io/yardtrack/internal/yard/scan"
	"github.com/yardtrack-io/yardtrack/internal/yard/view"
	"github.com/yardtrack-io/yardtrack/pkg/log"
	genericoptions "github.com/yardtrack-io/yardtrack/pkg/options"
)

// Controller is the slice of the agent's controller the HTTP surface needs.
type Controller interface {
	Projection() []model.Vehicle
	ViewState() view.State
	SetStatusFilter(filter string)
	SetSearch(text string)
	ApplyDefectFilter(ctx context.Context, labels []string)
	Refresh(ctx context.Context)
	Focus(recordID string)
	FindByRecordID(recordID string) (model.Vehicle, bool)
	ShowDetail(ctx context.Context, v model.Vehicle) []model.Defect
	UpdateStatus(ctx context.Context, recordID string, status model.Status) error
}

// Server exposes the agent's operations over HTTP. It is the operator
// surface: everything the modal UI and list controls do in the field client
// maps to one route here.
type Server struct {
	opts       *genericoptions.HttpOptions
	controller Controller
	scanner    *scan.Coordinator
	ready      func() bool

	srv    *http.Server
	logger log.Logger
}

// NewServer creates a Server. ready reports transport readiness for /readyz.
func NewServer(opts *genericoptions.HttpOptions, controller Controller, scanner *scan.Coordinator, ready func() bool) *Server {
	s := &Server{
		opts:       opts,
		controller: controller,
		scanner:    scanner,
		ready:      ready,
		logger:     log.WithName("http"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/vehicles", s.handleListVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{recordId}/defects", s.handleVehicleDefects).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{recordId}/status", s.handleUpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/view", s.handleSetView).Methods(http.MethodPut)
	api.HandleFunc("/view/defect-filter", s.handleDefectFilter).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/focus/{recordId}", s.handleFocus).Methods(http.MethodPost)
	api.HandleFunc("/scan", s.handleScanOpen).Methods(http.MethodPost)
	api.HandleFunc("/scan", s.handleScanState).Methods(http.MethodGet)
	api.HandleFunc("/scan", s.handleScanCancel).Methods(http.MethodDelete)
	api.HandleFunc("/scan/entry", s.handleScanEntry).Methods(http.MethodPost)
	api.HandleFunc("/scan/toggle", s.handleScanToggle).Methods(http.MethodPost)

	s.srv = &http.Server{
		Handler:      r,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	}
	return s
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen(s.opts.Network, s.opts.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	s.logger.Info("HTTP server listening", "addr", s.opts.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Projection())
}

type viewRequest struct {
	StatusFilter *string `json:"statusFilter,omitempty"`
	SearchText   *string `json:"searchText,omitempty"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.StatusFilter != nil {
		switch *req.StatusFilter {
		case model.StatusFilterAll, string(model.StatusParked), string(model.StatusPreShipment), string(model.StatusShipped):
		default:
			http.Error(w, "unknown status filter", http.StatusBadRequest)
			return
		}
		s.controller.SetStatusFilter(*req.StatusFilter)
	}
	if req.SearchText != nil {
		s.controller.SetSearch(*req.SearchText)
	}
	writeJSON(w, http.StatusOK, s.controller.ViewState())
}

type defectFilterRequest struct {
	Labels []string `json:"labels"`
}

func (s *Server) handleDefectFilter(w http.ResponseWriter, r *http.Request) {
	var req defectFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.controller.ApplyDefectFilter(r.Context(), req.Labels)
	writeJSON(w, http.StatusOK, s.controller.Projection())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.controller.Refresh(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["recordId"]
	if _, ok := s.controller.FindByRecordID(recordID); !ok {
		http.Error(w, "unknown record", http.StatusNotFound)
		return
	}

	s.controller.Focus(recordID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleVehicleDefects(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["recordId"]
	v, ok := s.controller.FindByRecordID(recordID)
	if !ok {
		http.Error(w, "unknown record", http.StatusNotFound)
		return
	}

	defects := s.controller.ShowDetail(r.Context(), v)
	writeJSON(w, http.StatusOK, map[string]any{
		"vehicle": v,
		"defects": defects,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["recordId"]
	if _, ok := s.controller.FindByRecordID(recordID); !ok {
		http.Error(w, "unknown record", http.StatusNotFound)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch model.Status(req.Status) {
	case model.StatusParked, model.StatusPreShipment, model.StatusShipped:
	default:
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	if err := s.controller.UpdateStatus(r.Context(), recordID, model.Status(req.Status)); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleScanOpen(w http.ResponseWriter, r *http.Request) {
	if err := s.scanner.Open(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeScanState(w)
}

func (s *Server) handleScanState(w http.ResponseWriter, r *http.Request) {
	s.writeScanState(w)
}

func (s *Server) handleScanCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.scanner.Cancel(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeScanState(w)
}

type scanEntryRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleScanEntry(w http.ResponseWriter, r *http.Request) {
	var req scanEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.scanner.SubmitManual(r.Context(), req.Text); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeScanState(w)
}

func (s *Server) handleScanToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.scanner.Toggle(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.writeScanState(w)
}

func (s *Server) writeScanState(w http.ResponseWriter) {
	vehicleID, tagID := s.scanner.Pending()
	writeJSON(w, http.StatusOK, map[string]string{
		"state":     s.scanner.State(),
		"vehicleId": vehicleID,
		"tagId":     tagID,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
