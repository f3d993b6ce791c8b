package agents

import (
	"context"
	"fmt"

	"github.com/rahul/campaigner/internal/llm"
)

const strategistSystem = "You are a senior campaign strategist for an insurance distribution network. You turn segment profiles into concrete, executable campaign plans."

// Strategist builds the final campaign strategy from the profiled segment.
// The structural choices follow fixed heuristics over the segment statistics;
// an LLM provider, when present, contributes only the narrative.
type Strategist struct {
	LLM     *llm.Provider
	Prompts *PromptManager
}

func NewStrategist(provider *llm.Provider, prompts *PromptManager) *Strategist {
	return &Strategist{LLM: provider, Prompts: prompts}
}

func (s *Strategist) Strategize(ctx context.Context, profiles *ProfileReport, goal string, criteria *Criteria) (*StrategyReport, error) {
	if profiles == nil || !profiles.Success {
		return nil, fmt.Errorf("strategy generation failed: no valid profile report provided")
	}
	if criteria == nil {
		return nil, fmt.Errorf("strategy generation failed: no criteria provided")
	}

	report := &StrategyReport{Success: true}

	if len(profiles.Breakdowns) > 0 {
		report.PerSegment = make(map[string]*Strategy, len(profiles.Breakdowns))
		for name, sub := range profiles.Breakdowns {
			strat := buildStrategy(criteria.Objective, name, sub.Count, subMean(sub, "AUM_SELFREPORTED"), subMean(sub, "NPS_SCORE"), meanAge(profiles))
			if err := s.narrate(ctx, strat, goal, name); err != nil {
				return nil, fmt.Errorf("strategy generation failed: %w", err)
			}
			report.PerSegment[name] = strat
		}
	} else {
		strat := buildStrategy(criteria.Objective, "all targeted agents", profiles.Summary.TotalAgents, statMean(profiles, "AUM_SELFREPORTED"), statMean(profiles, "NPS_SCORE"), meanAge(profiles))
		if err := s.narrate(ctx, strat, goal, "all targeted agents"); err != nil {
			return nil, fmt.Errorf("strategy generation failed: %w", err)
		}
		report.Overall = strat
	}

	report.ConfidenceScore = confidence(profiles)
	return report, nil
}

func (s *Strategist) narrate(ctx context.Context, strat *Strategy, goal, segment string) error {
	if s.LLM == nil {
		strat.Narrative = fmt.Sprintf("A %s campaign reaching %d agents over %s, led by %s outreach: %s",
			strat.Objective, strat.ExpectedReach, strat.Timing.Duration, strat.Channels.Primary, strat.Messaging.PrimaryMessage)
		return nil
	}
	prompt := s.Prompts.StrategyPrompt(goal, strat.Objective, segment, strat.ExpectedReach,
		strat.Messaging.PrimaryMessage, strat.Channels.Primary, strat.Timing.Duration)
	narrative, err := s.LLM.Query(ctx, strategistSystem, prompt)
	if err != nil {
		return err
	}
	strat.Narrative = narrative
	return nil
}

func buildStrategy(objective, segment string, reach int, avgAUM, avgNPS, avgAge float64) *Strategy {
	perAgent := budgetPerAgent(avgAUM)
	return &Strategy{
		Objective:     objective,
		ExpectedReach: reach,
		Messaging:     messagingFor(objective, segment),
		Channels:      channelsFor(avgAUM, avgAge),
		Timing: Timing{
			Duration:     "4-6 weeks",
			LaunchWindow: "start of month",
			Cadence:      cadenceFor(objective),
		},
		Budget: Budget{
			Total:       perAgent * float64(reach),
			PerAgent:    perAgent,
			ExpectedROI: roiFor(objective, avgNPS),
		},
		SuccessMetrics: metricsFor(objective),
	}
}

// budgetPerAgent scales spend with the value of the book.
func budgetPerAgent(avgAUM float64) float64 {
	switch {
	case avgAUM > 5_000_000:
		return 500
	case avgAUM > 2_000_000:
		return 250
	default:
		return 150
	}
}

func messagingFor(objective, segment string) Messaging {
	switch objective {
	case "retention":
		return Messaging{
			PrimaryMessage: "You're a valued partner. Let's grow together.",
			Headlines: []string{
				"Exclusive benefits for our top partners",
				"Your success is our priority",
			},
			CallToAction:        "Schedule a partnership review",
			PersonalizationTips: []string{"Reference tenure milestones", "Acknowledge recent production"},
		}
	case "acquisition":
		return Messaging{
			PrimaryMessage: "Join a network built for agent growth.",
			Headlines: []string{
				"Better tools, better commissions",
				"See why agents are switching",
			},
			CallToAction:        "Book an introduction call",
			PersonalizationTips: []string{"Lead with onboarding support", "Compare commission structures"},
		}
	case "upsell":
		return Messaging{
			PrimaryMessage: "Unlock your next tier of products and commissions.",
			Headlines: []string{
				"New products your clients are asking for",
				"Expand your book with our premium lines",
			},
			CallToAction:        "Explore the expanded product catalog",
			PersonalizationTips: []string{"Anchor on current product mix", "Quantify the commission uplift"},
		}
	case "winback":
		return Messaging{
			PrimaryMessage: "We've made changes. Come see what's new.",
			Headlines: []string{
				"We heard you, and we acted",
				"A fresh start with better support",
			},
			CallToAction:        "Reconnect with your account manager",
			PersonalizationTips: []string{"Acknowledge past friction directly", "Offer a concrete first step"},
		}
	default:
		return Messaging{
			PrimaryMessage: fmt.Sprintf("A program designed for %s.", segment),
			Headlines:      []string{"Built around how you work"},
			CallToAction:   "Learn more",
		}
	}
}

func channelsFor(avgAUM, avgAge float64) Channels {
	if avgAUM > 5_000_000 {
		return Channels{
			Primary:  "personal call",
			Sequence: []string{"personal call", "email follow-up", "in-person meeting"},
		}
	}
	if avgAge > 0 && avgAge < 40 {
		return Channels{
			Primary:  "email",
			Sequence: []string{"email", "sms", "webinar invite"},
		}
	}
	return Channels{
		Primary:  "email",
		Sequence: []string{"email", "phone follow-up"},
	}
}

func cadenceFor(objective string) string {
	if objective == "winback" {
		return "weekly"
	}
	return "bi-weekly"
}

func roiFor(objective string, avgNPS float64) string {
	if objective == "retention" && avgNPS >= 8 {
		return "high"
	}
	if objective == "winback" {
		return "moderate"
	}
	return "moderate-to-high"
}

func metricsFor(objective string) []string {
	switch objective {
	case "retention":
		return []string{"retention rate", "NPS delta", "engagement rate"}
	case "acquisition":
		return []string{"new agent signups", "cost per acquisition", "time to first policy"}
	case "upsell":
		return []string{"products per agent", "premium growth", "offer conversion rate"}
	case "winback":
		return []string{"reactivation rate", "response rate", "90-day retention of reactivated agents"}
	default:
		return []string{"response rate", "engagement rate"}
	}
}

// confidence grows with segment size and the amount of statistical backing,
// capped below certainty.
func confidence(profiles *ProfileReport) float64 {
	score := 0.5
	if profiles.Summary.TotalAgents >= 100 {
		score += 0.2
	} else if profiles.Summary.TotalAgents >= 20 {
		score += 0.1
	}
	score += 0.05 * float64(len(profiles.Statistics))
	if score > 0.95 {
		score = 0.95
	}
	return score
}

func statMean(profiles *ProfileReport, field string) float64 {
	if st, ok := profiles.Statistics[field]; ok {
		return st.Mean
	}
	return 0
}

func subMean(sub *SubSegment, field string) float64 {
	if st, ok := sub.Statistics[field]; ok {
		return st.Mean
	}
	return 0
}

func meanAge(profiles *ProfileReport) float64 {
	return statMean(profiles, "Age")
}
