package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/campaigner/internal/agents"
	"github.com/rahul/campaigner/internal/governance"
	"github.com/rahul/campaigner/internal/planner"
	"github.com/rahul/campaigner/internal/service"
	"github.com/rahul/campaigner/internal/store"
)

type syncRunner struct {
	registry *planner.Registry
}

func (r *syncRunner) Run(ctx context.Context, planID string) error {
	plan, ok := r.registry.GetPlan(planID)
	if !ok {
		return fmt.Errorf("plan %s not found", planID)
	}
	for _, step := range plan.Steps {
		r.registry.UpdateStepStatus(planID, step.Step, planner.StepInProgress, nil, "")
		var payload any
		switch step.AgentName {
		case agents.StageGoalParser:
			payload = &agents.Criteria{Objective: "retention"}
		case agents.StageDataLoader:
			payload = &agents.DatasetSummary{Success: true}
		case agents.StageSegmentation:
			payload = &agents.Segmentation{Success: true}
		case agents.StageProfileGenerator:
			payload = &agents.ProfileReport{Success: true}
		case agents.StageCampaignStrategist:
			payload = &agents.StrategyReport{Success: true}
		}
		r.registry.UpdateStepStatus(planID, step.Step, planner.StepCompleted, payload, "")
	}
	return nil
}

type fixedLister struct {
	records []store.PlanRecord
	err     error
}

func (l *fixedLister) ListPlans(limit int) ([]store.PlanRecord, error) {
	return l.records, l.err
}

func newTestGateway(t *testing.T) (*HTTPGateway, *service.CampaignService) {
	t.Helper()
	registry := planner.NewRegistry()
	svc := service.NewCampaignService(registry, &syncRunner{registry: registry}, governance.NewDefaultPolicyEngine(), nil, nil, 5)
	return NewHTTPGateway(":0", svc, &fixedLister{}), svc
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCreateCampaignEndpoint(t *testing.T) {
	gw, svc := newTestGateway(t)

	w := doJSON(t, gw.Handler(), http.MethodPost, "/campaigns", `{"goal": "Retain high-value agents", "name": "Q3"}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var receipt service.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	assert.True(t, receipt.Success)
	assert.Equal(t, "Q3", receipt.Name)
	assert.Len(t, receipt.PlanID, 11)

	svc.Wait()
	status := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns/"+receipt.PlanID+"/status", "")
	require.Equal(t, http.StatusOK, status.Code)

	var view planner.StatusView
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &view))
	assert.Equal(t, planner.PlanCompleted, view.Status)
	assert.Len(t, view.Steps, 5)
}

func TestCreateRejectsEmptyGoal(t *testing.T) {
	gw, _ := newTestGateway(t)
	w := doJSON(t, gw.Handler(), http.MethodPost, "/campaigns", `{"goal": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateRejectsBadJSON(t *testing.T) {
	gw, _ := newTestGateway(t)
	w := doJSON(t, gw.Handler(), http.MethodPost, "/campaigns", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusUnknownCampaign(t *testing.T) {
	gw, _ := newTestGateway(t)
	w := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns/CAMMISSING1/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultEndpoint(t *testing.T) {
	gw, svc := newTestGateway(t)

	w := doJSON(t, gw.Handler(), http.MethodPost, "/campaigns", `{"goal": "some goal"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var receipt service.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	svc.Wait()

	res := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns/"+receipt.PlanID+"/result", "")
	require.Equal(t, http.StatusOK, res.Code)

	var results planner.Results
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &results))
	require.NotNil(t, results.Criteria)
	assert.Equal(t, "retention", results.Criteria.Objective)
}

func TestPlanEndpointReturnsStepViews(t *testing.T) {
	gw, svc := newTestGateway(t)

	w := doJSON(t, gw.Handler(), http.MethodPost, "/campaigns", `{"goal": "some goal"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var receipt service.Receipt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
	svc.Wait()

	res := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns/"+receipt.PlanID+"/plan", "")
	require.Equal(t, http.StatusOK, res.Code)

	var steps []planner.StepView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &steps))
	require.Len(t, steps, 5)
	assert.Equal(t, "GoalParser", steps[0].Agent)
	assert.Equal(t, planner.StepCompleted, steps[0].Status)
}

func TestListEndpoint(t *testing.T) {
	registry := planner.NewRegistry()
	svc := service.NewCampaignService(registry, &syncRunner{registry: registry}, governance.NewDefaultPolicyEngine(), nil, nil, 5)
	gw := NewHTTPGateway(":0", svc, &fixedLister{records: []store.PlanRecord{{PlanID: "CAM11111111", Name: "Q3"}}})

	w := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []store.PlanRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "CAM11111111", records[0].PlanID)
}

func TestListEndpointStoreError(t *testing.T) {
	registry := planner.NewRegistry()
	svc := service.NewCampaignService(registry, &syncRunner{registry: registry}, governance.NewDefaultPolicyEngine(), nil, nil, 5)
	gw := NewHTTPGateway(":0", svc, &fixedLister{err: errors.New("db closed")})

	w := doJSON(t, gw.Handler(), http.MethodGet, "/campaigns", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	gw, _ := newTestGateway(t)
	w := doJSON(t, gw.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
