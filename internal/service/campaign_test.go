package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/campaigner/internal/agents"
	"github.com/rahul/campaigner/internal/governance"
	"github.com/rahul/campaigner/internal/planner"
)

// fakeRunner drives the registry the way the real executor does, without any
// collaborators behind it.
type fakeRunner struct {
	registry *planner.Registry
	failStep int
	delay    time.Duration
}

func (r *fakeRunner) Run(ctx context.Context, planID string) error {
	plan, ok := r.registry.GetPlan(planID)
	if !ok {
		return fmt.Errorf("plan %s not found", planID)
	}
	r.registry.UpdatePlanStatus(planID, planner.PlanExecuting, "")

	for _, step := range plan.Steps {
		if r.delay > 0 {
			time.Sleep(r.delay)
		}
		r.registry.UpdateStepStatus(planID, step.Step, planner.StepInProgress, nil, "")
		if step.Step == r.failStep {
			r.registry.UpdateStepStatus(planID, step.Step, planner.StepFailed, nil, "timeout")
			r.registry.UpdatePlanStatus(planID, planner.PlanFailed, "timeout")
			return errors.New("timeout")
		}
		r.registry.UpdateStepStatus(planID, step.Step, planner.StepCompleted, stagePayload(step.AgentName), "")
	}
	return nil
}

func stagePayload(stage agents.Stage) any {
	switch stage {
	case agents.StageGoalParser:
		return &agents.Criteria{Objective: "retention"}
	case agents.StageDataLoader:
		return &agents.DatasetSummary{Success: true}
	case agents.StageSegmentation:
		return &agents.Segmentation{Success: true}
	case agents.StageProfileGenerator:
		return &agents.ProfileReport{Success: true}
	case agents.StageCampaignStrategist:
		return &agents.StrategyReport{Success: true}
	}
	return nil
}

type fakePersister struct {
	mu    sync.Mutex
	saved []*planner.StatusView
	err   error
}

func (p *fakePersister) SavePlan(view *planner.StatusView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, view)
	return nil
}

func (p *fakePersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saved)
}

func newTestService(registry *planner.Registry, runner Runner, store Persister) *CampaignService {
	return NewCampaignService(registry, runner, governance.NewDefaultPolicyEngine(), store, nil, 5)
}

func TestCreateReturnsImmediately(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry, delay: 20 * time.Millisecond}, nil)

	receipt, err := svc.Create(context.Background(), "Retain high-value agents", "Q3 Retention")
	require.NoError(t, err)

	assert.True(t, receipt.Success)
	assert.Equal(t, "Q3 Retention", receipt.Name)
	assert.Equal(t, "Retain high-value agents", receipt.Goal)
	assert.Equal(t, planner.PlanPending, receipt.Status)
	assert.NotEmpty(t, receipt.CreatedAt)
	assert.Len(t, receipt.PlanID, 11)

	require.Len(t, receipt.Steps, 5)
	for i, step := range receipt.Steps {
		assert.Equal(t, i+1, step.Step)
		assert.Equal(t, planner.StepPending, step.Status)
	}

	svc.Wait()
	view, err := svc.GetStatus(receipt.PlanID)
	require.NoError(t, err)
	assert.Equal(t, planner.PlanCompleted, view.Status)
}

func TestCreatePersistsOnSuccess(t *testing.T) {
	registry := planner.NewRegistry()
	store := &fakePersister{}
	svc := newTestService(registry, &fakeRunner{registry: registry}, store)

	receipt, err := svc.Create(context.Background(), "goal", "")
	require.NoError(t, err)
	svc.Wait()

	require.Equal(t, 1, store.count())
	assert.Equal(t, receipt.PlanID, store.saved[0].PlanID)

	results, err := svc.GetResult(receipt.PlanID)
	require.NoError(t, err)
	assert.Equal(t, 5, results.Count())
}

func TestCreateSkipsPersistOnFailure(t *testing.T) {
	registry := planner.NewRegistry()
	store := &fakePersister{}
	svc := newTestService(registry, &fakeRunner{registry: registry, failStep: 2}, store)

	receipt, err := svc.Create(context.Background(), "goal", "")
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, 0, store.count())

	view, err := svc.GetStatus(receipt.PlanID)
	require.NoError(t, err)
	assert.Equal(t, planner.PlanFailed, view.Status)
	assert.Equal(t, "timeout", view.Steps[1].Error)
	assert.Equal(t, "timeout", view.Error)
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	registry := planner.NewRegistry()
	store := &fakePersister{err: errors.New("disk full")}
	svc := newTestService(registry, &fakeRunner{registry: registry}, store)

	receipt, err := svc.Create(context.Background(), "goal", "")
	require.NoError(t, err)
	svc.Wait()

	// The in-memory plan still completed; persistence only warned.
	view, err := svc.GetStatus(receipt.PlanID)
	require.NoError(t, err)
	assert.Equal(t, planner.PlanCompleted, view.Status)
}

func TestCreateRejectsEmptyGoal(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry}, nil)

	_, err := svc.Create(context.Background(), "   ", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGoalRejected)
}

func TestCreateRejectsDeniedPattern(t *testing.T) {
	registry := planner.NewRegistry()
	policy := governance.NewDefaultPolicyEngine()
	require.NoError(t, policy.DenyGoal(`(?i)spam`))
	svc := NewCampaignService(registry, &fakeRunner{registry: registry}, policy, nil, nil, 5)

	_, err := svc.Create(context.Background(), "Spam every agent daily", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGoalRejected)
}

func TestGetResultNotReady(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry, delay: 30 * time.Millisecond}, nil)

	receipt, err := svc.Create(context.Background(), "goal", "")
	require.NoError(t, err)

	_, err = svc.GetResult(receipt.PlanID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)

	svc.Wait()
	results, err := svc.GetResult(receipt.PlanID)
	require.NoError(t, err)
	assert.NotNil(t, results.Strategy)
}

func TestGetPlanReturnsStepViews(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry}, nil)

	receipt, err := svc.Create(context.Background(), "goal", "")
	require.NoError(t, err)
	svc.Wait()

	steps, err := svc.GetPlan(receipt.PlanID)
	require.NoError(t, err)
	require.Len(t, steps, 5)
	for i, step := range steps {
		assert.Equal(t, i+1, step.Step)
		assert.Equal(t, planner.StepCompleted, step.Status)
		assert.NotNil(t, step.StartedAt)
		assert.NotNil(t, step.CompletedAt)
	}
}

func TestAccessorsUnknownPlan(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry}, nil)

	_, err := svc.GetStatus("CAMMISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetPlan("CAMMISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetResult("CAMMISSING1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentCreatesAllComplete(t *testing.T) {
	registry := planner.NewRegistry()
	svc := newTestService(registry, &fakeRunner{registry: registry, delay: time.Millisecond}, nil)

	ids := make(chan string, 20)
	errs := make(chan error, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipt, err := svc.Create(context.Background(), fmt.Sprintf("goal %d", i), "")
			if err != nil {
				errs <- err
				return
			}
			ids <- receipt.PlanID
		}(i)
	}
	wg.Wait()
	close(ids)
	close(errs)
	svc.Wait()

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate plan id %s", id)
		seen[id] = true
		view, err := svc.GetStatus(id)
		require.NoError(t, err)
		assert.Equal(t, planner.PlanCompleted, view.Status)
	}
	assert.Len(t, seen, 20)
}
