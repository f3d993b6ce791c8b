package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rahul/campaigner/internal/service"
	"github.com/rahul/campaigner/internal/store"
)

// Lister reads persisted campaign headers.
type Lister interface {
	ListPlans(limit int) ([]store.PlanRecord, error)
}

// HTTPGateway exposes the campaign service over a JSON HTTP API.
type HTTPGateway struct {
	Service *service.CampaignService
	Store   Lister

	server *http.Server
}

func NewHTTPGateway(addr string, svc *service.CampaignService, lister Lister) *HTTPGateway {
	g := &HTTPGateway{Service: svc, Store: lister}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /campaigns", g.handleCreate)
	mux.HandleFunc("GET /campaigns", g.handleList)
	mux.HandleFunc("GET /campaigns/{id}/status", g.handleStatus)
	mux.HandleFunc("GET /campaigns/{id}/plan", g.handlePlan)
	mux.HandleFunc("GET /campaigns/{id}/result", g.handleResult)
	mux.HandleFunc("GET /healthz", g.handleHealth)

	g.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return g
}

// Handler exposes the routing table for tests.
func (g *HTTPGateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *HTTPGateway) Start() error {
	err := g.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *HTTPGateway) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return g.server.Shutdown(ctx)
}

type createRequest struct {
	Goal string `json:"goal"`
	Name string `json:"name"`
}

func (g *HTTPGateway) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	receipt, err := g.Service.Create(r.Context(), req.Goal, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrGoalRejected) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (g *HTTPGateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	view, err := g.Service.GetStatus(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (g *HTTPGateway) handlePlan(w http.ResponseWriter, r *http.Request) {
	steps, err := g.Service.GetPlan(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (g *HTTPGateway) handleResult(w http.ResponseWriter, r *http.Request) {
	results, err := g.Service.GetResult(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (g *HTTPGateway) handleList(w http.ResponseWriter, r *http.Request) {
	if g.Store == nil {
		writeJSON(w, http.StatusOK, []store.PlanRecord{})
		return
	}
	records, err := g.Store.ListPlans(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.PlanRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (g *HTTPGateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
