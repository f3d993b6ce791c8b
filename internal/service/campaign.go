package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rahul/campaigner/internal/governance"
	"github.com/rahul/campaigner/internal/observability"
	"github.com/rahul/campaigner/internal/planner"
)

var (
	// ErrNotFound marks lookups for campaigns the service has never seen.
	ErrNotFound = errors.New("campaign not found")
	// ErrNotReady marks result requests for campaigns that have not completed.
	ErrNotReady = errors.New("campaign results not ready")
	// ErrGoalRejected marks goals denied by the policy engine.
	ErrGoalRejected = errors.New("campaign goal rejected")
)

// Runner executes a stored plan to completion. The orchestrator executor is
// the production implementation.
type Runner interface {
	Run(ctx context.Context, planID string) error
}

// Persister stores finished campaigns.
type Persister interface {
	SavePlan(view *planner.StatusView) error
}

// Receipt is what Create hands back immediately, before any execution: the
// registered plan's identity and its initial step list.
type Receipt struct {
	Success   bool               `json:"success"`
	PlanID    string             `json:"plan_id"`
	Name      string             `json:"name"`
	Goal      string             `json:"goal"`
	Status    planner.PlanStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
	Steps     []planner.StepView `json:"steps"`
}

// CampaignService is the async facade over the planner and executor. Create
// vets the goal, registers a plan and returns at once; execution happens on
// the bounded pool and callers poll the accessors for progress.
type CampaignService struct {
	Registry *planner.Registry
	Executor Runner
	Policy   governance.PolicyEngine
	Store    Persister
	Logger   *observability.Logger

	pool    *Pool
	baseCtx context.Context
}

func NewCampaignService(registry *planner.Registry, executor Runner, policy governance.PolicyEngine, store Persister, logger *observability.Logger, poolSize int) *CampaignService {
	if poolSize <= 0 {
		poolSize = 5
	}
	return &CampaignService{
		Registry: registry,
		Executor: executor,
		Policy:   policy,
		Store:    store,
		Logger:   logger,
		pool:     NewPool(int64(poolSize)),
		baseCtx:  context.Background(),
	}
}

// SetBaseContext rebinds the context background executions run under. Used
// by the daemon to tie running campaigns to its shutdown signal.
func (s *CampaignService) SetBaseContext(ctx context.Context) {
	s.baseCtx = ctx
}

// Create vets the goal, registers the plan and schedules its execution.
// It returns as soon as the plan exists; progress is observed via GetStatus.
func (s *CampaignService) Create(ctx context.Context, goal, name string) (*Receipt, error) {
	if s.Policy != nil {
		result, err := s.Policy.Evaluate(ctx, governance.Request{Goal: goal})
		if err != nil {
			return nil, fmt.Errorf("policy evaluation failed: %w", err)
		}
		if s.Logger != nil {
			s.Logger.LogPolicyCheck(goal, string(result.Effect), result.Reason)
		}
		if result.Effect == governance.EffectDeny {
			return nil, fmt.Errorf("%w: %s", ErrGoalRejected, result.Reason)
		}
	}

	planID, plan := s.Registry.CreatePlan(goal, name)
	if s.Logger != nil {
		s.Logger.LogPlanCreated(planID, plan.Name, goal)
	}

	s.pool.Submit(s.baseCtx, func(runCtx context.Context) {
		s.execute(runCtx, planID)
	})

	return &Receipt{
		Success:   true,
		PlanID:    planID,
		Name:      plan.Name,
		Goal:      plan.Goal,
		Status:    plan.Status,
		CreatedAt: plan.CreatedAt.Format(time.RFC3339Nano),
		Steps:     plan.StepViews(),
	}, nil
}

func (s *CampaignService) execute(ctx context.Context, planID string) {
	if err := s.Executor.Run(ctx, planID); err != nil {
		return
	}
	s.persist(planID)
}

// persist writes the completed campaign to storage. Persistence failures are
// logged as warnings and never affect the in-memory plan.
func (s *CampaignService) persist(planID string) {
	if s.Store == nil {
		return
	}
	view, ok := s.Registry.GetPlanStatus(planID)
	if !ok {
		return
	}
	if err := s.Store.SavePlan(view); err != nil {
		if s.Logger != nil {
			s.Logger.LogPersistWarning(planID, err)
		}
	}
}

// GetStatus returns the full status snapshot of a campaign.
func (s *CampaignService) GetStatus(planID string) (*planner.StatusView, error) {
	view, ok := s.Registry.GetPlanStatus(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
	}
	return view, nil
}

// GetPlan returns the ordered step views of a campaign's plan.
func (s *CampaignService) GetPlan(planID string) ([]planner.StepView, error) {
	plan, ok := s.Registry.GetPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
	}
	return plan.StepViews(), nil
}

// GetResult returns the accumulated stage results once the campaign has
// completed. Until then it reports ErrNotReady with the current status.
func (s *CampaignService) GetResult(planID string) (*planner.Results, error) {
	plan, ok := s.Registry.GetPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, planID)
	}
	if plan.Status != planner.PlanCompleted {
		return nil, fmt.Errorf("%w: status is %s", ErrNotReady, plan.Status)
	}
	return &plan.Results, nil
}

// Wait blocks until every scheduled campaign has finished. Used on shutdown
// and in tests.
func (s *CampaignService) Wait() {
	s.pool.Wait()
}
