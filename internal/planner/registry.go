package planner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/campaigner/internal/agents"
)

// Registry is the in-memory store of campaign plans. Every read and mutation
// of the plan map and of any plan's fields happens under one mutex; callers
// only ever see snapshots. Constructed explicitly and handed to whoever
// needs it rather than hiding behind package-level state.
type Registry struct {
	mu    sync.Mutex
	plans map[string]*CampaignPlan
}

func NewRegistry() *Registry {
	return &Registry{plans: make(map[string]*CampaignPlan)}
}

// CreatePlan builds the fixed five-step topology for a goal and stores it.
// Name is auto-generated when empty. Returns the new plan ID and a snapshot.
func (r *Registry) CreatePlan(goal, name string) (string, *CampaignPlan) {
	planID := newPlanID()
	if name == "" {
		name = fmt.Sprintf("Campaign %s", time.Now().Format("20060102_150405"))
	}

	plan := &CampaignPlan{
		PlanID:    planID,
		Name:      name,
		Goal:      goal,
		CreatedAt: time.Now(),
		Status:    PlanPending,
		Steps:     newSteps(),
	}

	r.mu.Lock()
	r.plans[planID] = plan
	snapshot := plan.clone()
	r.mu.Unlock()

	return planID, snapshot
}

// GetPlan returns a snapshot of the plan, or false when unknown.
func (r *Registry) GetPlan(planID string) (*CampaignPlan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, ok := r.plans[planID]
	if !ok {
		return nil, false
	}
	return plan.clone(), true
}

// UpdateStepStatus transitions a step, records its timestamps, merges the
// result into the plan-level results and recomputes the aggregate plan
// status. Returns false when the plan or step does not exist, when the step
// is already terminal, or when the result payload does not match the stage.
func (r *Registry) UpdateStepStatus(planID string, stepNum int, status StepStatus, result any, errText string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, ok := r.plans[planID]
	if !ok {
		return false
	}

	step := plan.GetStep(stepNum)
	if step == nil {
		return false
	}
	if step.Status.Terminal() {
		return false
	}
	if result != nil && !canMerge(step.AgentName, result) {
		return false
	}

	step.Status = status

	now := time.Now()
	switch status {
	case StepInProgress:
		if step.StartedAt == nil {
			step.StartedAt = &now
		}
	case StepCompleted, StepFailed:
		if step.CompletedAt == nil {
			step.CompletedAt = &now
		}
	}

	if result != nil {
		step.Result = result
		plan.Results.merge(step.AgentName, result)
	}
	if errText != "" {
		step.Error = errText
	}

	plan.Status = derivePlanStatus(plan.Steps)
	return true
}

// UpdatePlanStatus directly overrides the plan-level status. Reserved for
// final completion/failure and for escalating errors caught outside the step
// loop.
func (r *Registry) UpdatePlanStatus(planID string, status PlanStatus, errText string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, ok := r.plans[planID]
	if !ok {
		return false
	}

	plan.Status = status
	if errText != "" {
		plan.Error = errText
	}
	return true
}

// GetPlanStatus returns the full serializable snapshot of a plan.
func (r *Registry) GetPlanStatus(planID string) (*StatusView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, ok := r.plans[planID]
	if !ok {
		return nil, false
	}
	return statusView(plan), true
}

func newPlanID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CAM" + strings.ToUpper(raw[:8])
}

func canMerge(stage agents.Stage, payload any) bool {
	var probe Results
	return probe.merge(stage, payload)
}

func newSteps() []PlanStep {
	return []PlanStep{
		{
			Step:        1,
			Description: "Parse campaign goal and extract criteria",
			AgentName:   agents.StageGoalParser,
			ActiveForm:  "Parsing campaign goal",
			Status:      StepPending,
		},
		{
			Step:        2,
			Description: "Load agent population data from CSV files",
			AgentName:   agents.StageDataLoader,
			ActiveForm:  "Loading agent data",
			Status:      StepPending,
		},
		{
			Step:        3,
			Description: "Filter agents based on parsed criteria",
			AgentName:   agents.StageSegmentation,
			ActiveForm:  "Segmenting agent population",
			Status:      StepPending,
		},
		{
			Step:        4,
			Description: "Generate comprehensive agent profiles and insights",
			AgentName:   agents.StageProfileGenerator,
			ActiveForm:  "Analyzing segment characteristics",
			Status:      StepPending,
		},
		{
			Step:        5,
			Description: "Develop comprehensive campaign strategy and recommendations",
			AgentName:   agents.StageCampaignStrategist,
			ActiveForm:  "Creating campaign strategy",
			Status:      StepPending,
		},
	}
}
