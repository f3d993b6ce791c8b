package planner

import (
	"time"

	"github.com/rahul/campaigner/internal/agents"
)

// StepStatus is the execution status of a single plan step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
)

// Terminal reports whether a step can no longer transition.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// PlanStatus is the aggregate execution status of a plan.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanExecuting PlanStatus = "executing"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// PlanStep is a single step in a campaign execution plan.
type PlanStep struct {
	Step        int          `json:"step"`
	Description string       `json:"description"`
	AgentName   agents.Stage `json:"agent"`
	ActiveForm  string       `json:"active_form"`
	Status      StepStatus   `json:"status"`
	StartedAt   *time.Time   `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at"`
	Result      any          `json:"-"`
	Error       string       `json:"error,omitempty"`
}

// Results accumulates the typed output of each completed stage. Later stages
// read earlier stages' output through these fields; the JSON keys match the
// stage agent names.
type Results struct {
	Criteria     *agents.Criteria       `json:"GoalParser,omitempty"`
	Dataset      *agents.DatasetSummary `json:"DataLoader,omitempty"`
	Segmentation *agents.Segmentation   `json:"SegmentationAgent,omitempty"`
	Profiles     *agents.ProfileReport  `json:"ProfileGeneratorAgent,omitempty"`
	Strategy     *agents.StrategyReport `json:"CampaignStrategistAgent,omitempty"`
}

// merge stores a stage payload under its typed field. Returns false when the
// payload type does not match the stage.
func (r *Results) merge(stage agents.Stage, payload any) bool {
	switch stage {
	case agents.StageGoalParser:
		if v, ok := payload.(*agents.Criteria); ok {
			r.Criteria = v
			return true
		}
	case agents.StageDataLoader:
		if v, ok := payload.(*agents.DatasetSummary); ok {
			r.Dataset = v
			return true
		}
	case agents.StageSegmentation:
		if v, ok := payload.(*agents.Segmentation); ok {
			r.Segmentation = v
			return true
		}
	case agents.StageProfileGenerator:
		if v, ok := payload.(*agents.ProfileReport); ok {
			r.Profiles = v
			return true
		}
	case agents.StageCampaignStrategist:
		if v, ok := payload.(*agents.StrategyReport); ok {
			r.Strategy = v
			return true
		}
	}
	return false
}

// Count reports how many stage results have been recorded.
func (r *Results) Count() int {
	n := 0
	if r.Criteria != nil {
		n++
	}
	if r.Dataset != nil {
		n++
	}
	if r.Segmentation != nil {
		n++
	}
	if r.Profiles != nil {
		n++
	}
	if r.Strategy != nil {
		n++
	}
	return n
}

// CampaignPlan is the canonical record of one campaign execution.
type CampaignPlan struct {
	PlanID    string     `json:"plan_id"`
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	CreatedAt time.Time  `json:"created_at"`
	Status    PlanStatus `json:"status"`
	Steps     []PlanStep `json:"steps"`
	Results   Results    `json:"results"`
	Error     string     `json:"error,omitempty"`
}

// GetStep returns the step with the given 1-based number, nil when absent.
func (p *CampaignPlan) GetStep(num int) *PlanStep {
	for i := range p.Steps {
		if p.Steps[i].Step == num {
			return &p.Steps[i]
		}
	}
	return nil
}

// clone deep-copies the plan's own structure. Stage payloads are shared:
// they are immutable once a collaborator returns them.
func (p *CampaignPlan) clone() *CampaignPlan {
	out := *p
	out.Steps = make([]PlanStep, len(p.Steps))
	copy(out.Steps, p.Steps)
	for i := range out.Steps {
		if t := out.Steps[i].StartedAt; t != nil {
			c := *t
			out.Steps[i].StartedAt = &c
		}
		if t := out.Steps[i].CompletedAt; t != nil {
			c := *t
			out.Steps[i].CompletedAt = &c
		}
	}
	return &out
}

// derivePlanStatus recomputes the aggregate plan status from the step
// statuses alone.
func derivePlanStatus(steps []PlanStep) PlanStatus {
	for i := range steps {
		if steps[i].Status == StepInProgress {
			return PlanExecuting
		}
	}
	for i := range steps {
		if steps[i].Status == StepFailed {
			return PlanFailed
		}
	}
	for i := range steps {
		if steps[i].Status != StepCompleted {
			return PlanPending
		}
	}
	return PlanCompleted
}

// StepView is the serializable projection of a plan step.
type StepView struct {
	Step        int        `json:"step"`
	Description string     `json:"description"`
	Agent       string     `json:"agent"`
	ActiveForm  string     `json:"active_form"`
	Status      StepStatus `json:"status"`
	StartedAt   *string    `json:"started_at"`
	CompletedAt *string    `json:"completed_at"`
	Error       string     `json:"error,omitempty"`
}

// StatusView is the full serializable snapshot of a plan.
type StatusView struct {
	Success   bool       `json:"success"`
	PlanID    string     `json:"plan_id"`
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	Status    PlanStatus `json:"status"`
	CreatedAt string     `json:"created_at"`
	Steps     []StepView `json:"steps"`
	Results   Results    `json:"results"`
	Error     string     `json:"error,omitempty"`
}

func stepView(s *PlanStep) StepView {
	v := StepView{
		Step:        s.Step,
		Description: s.Description,
		Agent:       string(s.AgentName),
		ActiveForm:  s.ActiveForm,
		Status:      s.Status,
		Error:       s.Error,
	}
	if s.StartedAt != nil {
		ts := s.StartedAt.Format(time.RFC3339Nano)
		v.StartedAt = &ts
	}
	if s.CompletedAt != nil {
		ts := s.CompletedAt.Format(time.RFC3339Nano)
		v.CompletedAt = &ts
	}
	return v
}

// StepViews returns the serializable projections of the plan's steps in
// order.
func (p *CampaignPlan) StepViews() []StepView {
	views := make([]StepView, 0, len(p.Steps))
	for i := range p.Steps {
		views = append(views, stepView(&p.Steps[i]))
	}
	return views
}

func statusView(p *CampaignPlan) *StatusView {
	view := &StatusView{
		Success:   true,
		PlanID:    p.PlanID,
		Name:      p.Name,
		Goal:      p.Goal,
		Status:    p.Status,
		CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
		Results:   p.Results,
		Error:     p.Error,
	}
	view.Steps = p.StepViews()
	return view
}
