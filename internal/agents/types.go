package agents

import (
	"github.com/rahul/campaigner/internal/dataset"
)

// Stage identifies one of the five fixed pipeline stages.
type Stage string

const (
	StageGoalParser         Stage = "GoalParser"
	StageDataLoader         Stage = "DataLoader"
	StageSegmentation       Stage = "SegmentationAgent"
	StageProfileGenerator   Stage = "ProfileGeneratorAgent"
	StageCampaignStrategist Stage = "CampaignStrategistAgent"
)

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{
		StageGoalParser,
		StageDataLoader,
		StageSegmentation,
		StageProfileGenerator,
		StageCampaignStrategist,
	}
}

// Constraint is a single filtering predicate extracted from the goal.
type Constraint struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Criteria is the structured output of the GoalParser stage.
type Criteria struct {
	Objective   string       `json:"objective"`
	Constraints []Constraint `json:"constraints"`
	TargetSize  int          `json:"target_size"`
	Priority    string       `json:"priority"`
}

// DatasetSummary is the output of the DataLoader stage. The full frame stays
// in the loader's cache; only the handle travels between stages, never the
// bulk rows.
type DatasetSummary struct {
	Success  bool           `json:"success"`
	RowCount int            `json:"row_count"`
	Columns  []string       `json:"columns"`
	Sample   []dataset.Row  `json:"sample,omitempty"`
	Handle   *dataset.Frame `json:"-"`
}

// FieldComparison pairs before/after statistics for one numeric field.
type FieldComparison struct {
	Original *dataset.FieldStats `json:"original,omitempty"`
	Filtered *dataset.FieldStats `json:"filtered,omitempty"`
}

// SegmentStats summarizes the effect of applying the criteria.
type SegmentStats struct {
	SegmentationRate float64                    `json:"segmentation_rate"`
	CriteriaCount    int                        `json:"criteria_count"`
	Objective        string                     `json:"objective"`
	Fields           map[string]FieldComparison `json:"fields,omitempty"`
}

// Segmentation is the output of the SegmentationAgent stage.
type Segmentation struct {
	Success       bool           `json:"success"`
	Total         int            `json:"total"`
	FilteredCount int            `json:"filtered_count"`
	IDs           []string       `json:"ids"`
	Sample        []dataset.Row  `json:"sample,omitempty"`
	Filtered      *dataset.Frame `json:"-"`
	Stats         SegmentStats   `json:"stats"`
}

// SegmentSummary describes the profiled segment at a glance.
type SegmentSummary struct {
	TotalAgents     int          `json:"total_agents"`
	Objective       string       `json:"objective"`
	CriteriaApplied []Constraint `json:"criteria_applied"`
}

// SubSegment is a per-group breakdown within the filtered segment.
type SubSegment struct {
	Count      int                            `json:"count"`
	Share      float64                        `json:"share"`
	Statistics map[string]*dataset.FieldStats `json:"statistics,omitempty"`
	Highlights []string                       `json:"highlights,omitempty"`
}

// EntityProfile is one agent's profile card.
type EntityProfile struct {
	AgentID      string  `json:"agent_id"`
	Segment      string  `json:"segment,omitempty"`
	AUM          float64 `json:"aum,omitempty"`
	NPSScore     float64 `json:"nps_score,omitempty"`
	Tenure       float64 `json:"tenure,omitempty"`
	PoliciesSold float64 `json:"policies_sold,omitempty"`
	Complaints   float64 `json:"complaints,omitempty"`
	Tier         string  `json:"tier,omitempty"`
}

// ProfileReport is the output of the ProfileGeneratorAgent stage.
type ProfileReport struct {
	Success         bool                           `json:"success"`
	Summary         SegmentSummary                 `json:"summary"`
	Statistics      map[string]*dataset.FieldStats `json:"statistics"`
	Insights        []string                       `json:"insights"`
	Description     string                         `json:"description,omitempty"`
	Breakdowns      map[string]*SubSegment         `json:"sub_segment_breakdowns,omitempty"`
	Profiles        []EntityProfile                `json:"entity_profiles"`
	Recommendations []string                       `json:"recommendations,omitempty"`
}

// Messaging carries the message strategy for a campaign.
type Messaging struct {
	PrimaryMessage      string   `json:"primary_message"`
	Headlines           []string `json:"headlines,omitempty"`
	CallToAction        string   `json:"call_to_action,omitempty"`
	PersonalizationTips []string `json:"personalization_tips,omitempty"`
}

// Channels carries channel recommendations.
type Channels struct {
	Primary  string   `json:"primary_channel"`
	Sequence []string `json:"sequence,omitempty"`
}

// Timing carries the campaign schedule recommendation.
type Timing struct {
	Duration     string `json:"duration"`
	LaunchWindow string `json:"launch_window,omitempty"`
	Cadence      string `json:"cadence,omitempty"`
}

// Budget carries the spend recommendation.
type Budget struct {
	Total       float64 `json:"total"`
	PerAgent    float64 `json:"per_agent"`
	ExpectedROI string  `json:"expected_roi,omitempty"`
}

// Strategy is one complete campaign strategy.
type Strategy struct {
	Objective      string    `json:"objective"`
	ExpectedReach  int       `json:"expected_reach"`
	Narrative      string    `json:"strategy_narrative"`
	Messaging      Messaging `json:"messaging"`
	Channels       Channels  `json:"channels"`
	Timing         Timing    `json:"timing"`
	Budget         Budget    `json:"budget"`
	SuccessMetrics []string  `json:"success_metrics,omitempty"`
}

// StrategyReport is the output of the CampaignStrategistAgent stage: either
// one unified strategy or a per-sub-segment map, depending on whether the
// profiler produced breakdowns.
type StrategyReport struct {
	Success         bool                 `json:"success"`
	Overall         *Strategy            `json:"strategy,omitempty"`
	PerSegment      map[string]*Strategy `json:"per_segment,omitempty"`
	ConfidenceScore float64              `json:"confidence_score"`
}
