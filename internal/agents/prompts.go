package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultParserPrompt = `Analyze this campaign goal and extract structured segmentation criteria:

GOAL: %q

Extract the following information and return as JSON:

1. objective: The campaign type (retention, acquisition, upsell, winback, engagement)
2. constraints: Array of filtering criteria with:
   - field: The data field to filter on (e.g., AUM_SELFREPORTED, NPS_SCORE, AGENT_TENURE)
   - operator: Comparison operator (>, >=, <, <=, ==, !=)
   - value: The threshold value (number or string)
3. target_size: Desired segment size (number)
4. priority: quality_over_quantity, balanced, or quantity_over_quality

Available fields for constraints:
- AUM_SELFREPORTED (numeric): Assets under management
- NPS_SCORE (numeric 0-10): Net Promoter Score
- AGENT_TENURE (numeric): Years with company
- NO_OF_UNIQUE_POLICIES_SOLD_LAST_12_MONTHS (numeric): Policies sold
- COMPLAINTS_LAST_12_MONTHS (numeric): Number of complaints
- PREMIUM_AMOUNT (numeric): Premium amount generated
- Age (numeric): Agent age
- Segment (string): Agent segment (Independent Agents, Emerging Experts, etc.)

Guidelines for interpretation:
- "high-value" or "top performers": AUM_SELFREPORTED > 5000000
- "good/excellent satisfaction": NPS_SCORE >= 8
- "poor satisfaction" or "at-risk": NPS_SCORE <= 6
- "active" or "productive": NO_OF_UNIQUE_POLICIES_SOLD_LAST_12_MONTHS >= 5
- "veteran" or "experienced": AGENT_TENURE >= 10
- "new" or "recent": AGENT_TENURE < 2

Return JSON with this structure:
{
  "objective": "retention|acquisition|upsell|winback|engagement",
  "constraints": [
    {"field": "FIELD_NAME", "operator": ">", "value": 0}
  ],
  "target_size": 100,
  "priority": "quality_over_quantity|balanced|quantity_over_quality"
}`

const defaultDescriptionPrompt = `Write a concise narrative description (2-3 paragraphs) of this insurance agent segment for a marketing team:

CAMPAIGN OBJECTIVE: %s
SEGMENT SIZE: %d agents
KEY STATISTICS:
%s
OBSERVATIONS:
%s

Describe who these agents are, what distinguishes them from the broader population, and what a campaign should keep in mind when addressing them.`

const defaultStrategyPrompt = `Write a narrative campaign strategy (3-4 paragraphs) for this insurance agent segment:

CAMPAIGN GOAL: %q
OBJECTIVE: %s
SEGMENT: %s (%d agents)
PRIMARY MESSAGE: %s
PRIMARY CHANNEL: %s
TIMELINE: %s

Tie the messaging, channel and timing choices into a coherent story the marketing team can execute.`

// PromptManager resolves agent prompts, preferring .md override files in a
// prompts directory and falling back to built-in defaults.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

func (pm *PromptManager) load(name, fallback string) string {
	if pm == nil || pm.Directory == "" {
		return fallback
	}
	data, err := os.ReadFile(filepath.Join(pm.Directory, name))
	if err != nil {
		return fallback
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return fallback
	}
	return s
}

// ParserPrompt builds the criteria-extraction prompt for a goal.
func (pm *PromptManager) ParserPrompt(goal string) string {
	return fmt.Sprintf(pm.load("goal_parser.md", defaultParserPrompt), goal)
}

// DescriptionPrompt builds the segment-description prompt.
func (pm *PromptManager) DescriptionPrompt(objective string, size int, stats, observations string) string {
	return fmt.Sprintf(pm.load("segment_description.md", defaultDescriptionPrompt), objective, size, stats, observations)
}

// StrategyPrompt builds the narrative-strategy prompt.
func (pm *PromptManager) StrategyPrompt(goal, objective, segment string, size int, message, channel, timeline string) string {
	return fmt.Sprintf(pm.load("strategy_narrative.md", defaultStrategyPrompt), goal, objective, segment, size, message, channel, timeline)
}
