package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rahul/campaigner/internal/agents"
	"github.com/rahul/campaigner/internal/observability"
	"github.com/rahul/campaigner/internal/planner"
)

// The five collaborators, one per pipeline stage. The concrete agents in
// internal/agents satisfy these; tests substitute stubs.

type GoalParser interface {
	Parse(ctx context.Context, goal string) (*agents.Criteria, error)
}

type DataLoader interface {
	Load(ctx context.Context) (*agents.DatasetSummary, error)
}

type Segmenter interface {
	Segment(ctx context.Context, criteria *agents.Criteria, data *agents.DatasetSummary) (*agents.Segmentation, error)
}

type Profiler interface {
	Profile(ctx context.Context, seg *agents.Segmentation, data *agents.DatasetSummary, criteria *agents.Criteria) (*agents.ProfileReport, error)
}

type Strategist interface {
	Strategize(ctx context.Context, profiles *agents.ProfileReport, goal string, criteria *agents.Criteria) (*agents.StrategyReport, error)
}

// Collaborators bundles the stage implementations handed to the executor.
type Collaborators struct {
	GoalParser GoalParser
	DataLoader DataLoader
	Segmenter  Segmenter
	Profiler   Profiler
	Strategist Strategist
}

// Executor walks a plan's steps in order, driving each through the
// pending -> in_progress -> completed/failed state machine. The first failed
// step aborts the run and fails the plan; there is no fallback path.
type Executor struct {
	Registry    *planner.Registry
	Agents      Collaborators
	StepTimeout time.Duration
	Logger      *observability.Logger
}

func NewExecutor(registry *planner.Registry, collaborators Collaborators, stepTimeout time.Duration, logger *observability.Logger) *Executor {
	return &Executor{
		Registry:    registry,
		Agents:      collaborators,
		StepTimeout: stepTimeout,
		Logger:      logger,
	}
}

// Run executes every step of the plan in order. It returns the error of the
// first failed step, after the registry has been updated to reflect the
// failure.
func (e *Executor) Run(ctx context.Context, planID string) (err error) {
	plan, ok := e.Registry.GetPlan(planID)
	if !ok {
		return fmt.Errorf("plan %s not found", planID)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plan execution panicked: %v", r)
			e.Registry.UpdatePlanStatus(planID, planner.PlanFailed, err.Error())
			e.logFinished(planID, string(planner.PlanFailed), err.Error())
		}
	}()

	e.Registry.UpdatePlanStatus(planID, planner.PlanExecuting, "")

	for _, step := range plan.Steps {
		if !e.Registry.UpdateStepStatus(planID, step.Step, planner.StepInProgress, nil, "") {
			err := fmt.Errorf("plan %s step %d could not start", planID, step.Step)
			e.Registry.UpdatePlanStatus(planID, planner.PlanFailed, err.Error())
			return err
		}
		e.logStep(planID, step, string(planner.StepInProgress))

		result, stepErr := e.dispatch(ctx, planID, step)
		if stepErr != nil {
			e.Registry.UpdateStepStatus(planID, step.Step, planner.StepFailed, nil, stepErr.Error())
			e.Registry.UpdatePlanStatus(planID, planner.PlanFailed, stepErr.Error())
			e.logStep(planID, step, string(planner.StepFailed))
			e.logFinished(planID, string(planner.PlanFailed), stepErr.Error())
			return fmt.Errorf("step %d (%s) failed: %w", step.Step, step.AgentName, stepErr)
		}

		if !e.Registry.UpdateStepStatus(planID, step.Step, planner.StepCompleted, result, "") {
			err := fmt.Errorf("plan %s step %d result rejected", planID, step.Step)
			e.Registry.UpdatePlanStatus(planID, planner.PlanFailed, err.Error())
			return err
		}
		e.logStep(planID, step, string(planner.StepCompleted))
	}

	e.logFinished(planID, string(planner.PlanCompleted), "")
	return nil
}

// dispatch runs one stage against the inputs accumulated so far. Inputs come
// from a fresh registry snapshot, so each stage sees exactly what earlier
// stages committed.
func (e *Executor) dispatch(ctx context.Context, planID string, step planner.PlanStep) (any, error) {
	if e.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.StepTimeout)
		defer cancel()
	}

	plan, ok := e.Registry.GetPlan(planID)
	if !ok {
		return nil, fmt.Errorf("plan %s disappeared mid-run", planID)
	}
	results := plan.Results

	switch step.AgentName {
	case agents.StageGoalParser:
		return e.Agents.GoalParser.Parse(ctx, plan.Goal)

	case agents.StageDataLoader:
		return e.Agents.DataLoader.Load(ctx)

	case agents.StageSegmentation:
		if results.Criteria == nil {
			return nil, fmt.Errorf("missing goal criteria for segmentation")
		}
		return e.Agents.Segmenter.Segment(ctx, results.Criteria, results.Dataset)

	case agents.StageProfileGenerator:
		if results.Segmentation == nil {
			return nil, fmt.Errorf("missing segmentation results for profiling")
		}
		return e.Agents.Profiler.Profile(ctx, results.Segmentation, results.Dataset, results.Criteria)

	case agents.StageCampaignStrategist:
		if results.Profiles == nil {
			return nil, fmt.Errorf("missing profile report for strategy generation")
		}
		return e.Agents.Strategist.Strategize(ctx, results.Profiles, plan.Goal, results.Criteria)
	}

	return nil, fmt.Errorf("no agent registered for stage %s", step.AgentName)
}

func (e *Executor) logStep(planID string, step planner.PlanStep, status string) {
	if e.Logger != nil {
		e.Logger.LogStep(planID, string(step.AgentName), step.Step, status)
	}
}

func (e *Executor) logFinished(planID, status, errText string) {
	if e.Logger != nil {
		e.Logger.LogPlanFinished(planID, status, errText)
	}
}
