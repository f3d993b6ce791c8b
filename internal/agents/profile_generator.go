package agents

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rahul/campaigner/internal/dataset"
	"github.com/rahul/campaigner/internal/llm"
)

const descriptionSystem = "You are a marketing analyst writing clear, factual segment descriptions for an insurance distribution team."

// profileFields are the numeric columns aggregated into the report.
var profileFields = []string{
	"AUM_SELFREPORTED",
	"NPS_SCORE",
	"AGENT_TENURE",
	"NO_OF_UNIQUE_POLICIES_SOLD_LAST_12_MONTHS",
	"COMPLAINTS_LAST_12_MONTHS",
	"PREMIUM_AMOUNT",
	"Age",
}

const maxEntityProfiles = 50

// ProfileGenerator aggregates the filtered segment into statistics,
// insights, sub-segment breakdowns and per-agent profile cards. When an LLM
// provider is configured it also writes a narrative description.
type ProfileGenerator struct {
	LLM      *llm.Provider
	Prompts  *PromptManager
	IDColumn string
}

func NewProfileGenerator(provider *llm.Provider, prompts *PromptManager, idColumn string) *ProfileGenerator {
	return &ProfileGenerator{LLM: provider, Prompts: prompts, IDColumn: idColumn}
}

func (p *ProfileGenerator) Profile(ctx context.Context, seg *Segmentation, data *DatasetSummary, criteria *Criteria) (*ProfileReport, error) {
	if seg == nil || !seg.Success {
		return nil, fmt.Errorf("profile generation failed: no valid segmentation results provided")
	}
	if seg.Filtered == nil || seg.Filtered.Len() == 0 {
		return nil, fmt.Errorf("profile generation failed: no filtered agents to profile")
	}
	if criteria == nil {
		return nil, fmt.Errorf("profile generation failed: no criteria provided")
	}

	frame := seg.Filtered
	statistics := make(map[string]*dataset.FieldStats)
	for _, field := range profileFields {
		if st := frame.Stats(field); st != nil {
			statistics[field] = st
		}
	}

	insights := segmentInsights(statistics, seg)

	report := &ProfileReport{
		Success: true,
		Summary: SegmentSummary{
			TotalAgents:     frame.Len(),
			Objective:       criteria.Objective,
			CriteriaApplied: criteria.Constraints,
		},
		Statistics:      statistics,
		Insights:        insights,
		Breakdowns:      subSegmentBreakdowns(frame),
		Profiles:        entityProfiles(frame, p.IDColumn, statistics),
		Recommendations: recommendations(statistics, criteria),
	}

	if p.LLM != nil {
		desc, err := p.describe(ctx, report, criteria)
		if err != nil {
			return nil, fmt.Errorf("profile generation failed: %w", err)
		}
		report.Description = desc
	}

	return report, nil
}

func (p *ProfileGenerator) describe(ctx context.Context, report *ProfileReport, criteria *Criteria) (string, error) {
	var stats []string
	for field, st := range report.Statistics {
		stats = append(stats, fmt.Sprintf("- %s: mean %.1f, median %.1f, range %.1f to %.1f", field, st.Mean, st.Median, st.Min, st.Max))
	}
	sort.Strings(stats)

	prompt := p.Prompts.DescriptionPrompt(
		criteria.Objective,
		report.Summary.TotalAgents,
		strings.Join(stats, "\n"),
		strings.Join(report.Insights, "\n"),
	)
	return p.LLM.Query(ctx, descriptionSystem, prompt)
}

func segmentInsights(statistics map[string]*dataset.FieldStats, seg *Segmentation) []string {
	var insights []string

	if st, ok := statistics["NPS_SCORE"]; ok {
		switch {
		case st.Mean >= 8:
			insights = append(insights, "Strong advocates: the segment reports high satisfaction and can be leveraged for referrals")
		case st.Mean <= 6:
			insights = append(insights, "At-risk relationships: below-average satisfaction calls for service recovery before any sales push")
		}
	}
	if st, ok := statistics["AUM_SELFREPORTED"]; ok {
		switch {
		case st.Mean > 5_000_000:
			insights = append(insights, "High-value book: average assets under management exceed $5M")
		case st.Mean > 2_000_000:
			insights = append(insights, "Mid-value book: solid assets under management with room to grow")
		}
	}
	if st, ok := statistics["AGENT_TENURE"]; ok {
		switch {
		case st.Mean >= 10:
			insights = append(insights, "Veteran population: long tenure suggests loyalty-oriented messaging")
		case st.Mean < 2:
			insights = append(insights, "Early-tenure population: onboarding support and training resonate here")
		}
	}
	if st, ok := statistics["COMPLAINTS_LAST_12_MONTHS"]; ok && st.Mean > 1 {
		insights = append(insights, "Elevated complaint volume: address open service issues in the first touch")
	}
	if seg.Stats.SegmentationRate < 0.05 {
		insights = append(insights, "Narrow segment: criteria select under 5% of the population, expect high per-agent spend")
	}

	if len(insights) == 0 {
		insights = append(insights, "Broad segment with no single dominant characteristic")
	}
	return insights
}

func subSegmentBreakdowns(frame *dataset.Frame) map[string]*SubSegment {
	if !frame.HasColumn("Segment") {
		return nil
	}
	groups := frame.GroupBy("Segment")
	if len(groups) <= 1 {
		return nil
	}

	out := make(map[string]*SubSegment, len(groups))
	for name, g := range groups {
		sub := &SubSegment{
			Count:      g.Len(),
			Share:      float64(g.Len()) / float64(frame.Len()),
			Statistics: make(map[string]*dataset.FieldStats),
		}
		for _, field := range statFields {
			if st := g.Stats(field); st != nil {
				sub.Statistics[field] = st
			}
		}
		if st, ok := sub.Statistics["NPS_SCORE"]; ok && st.Mean >= 8 {
			sub.Highlights = append(sub.Highlights, "high satisfaction")
		}
		if st, ok := sub.Statistics["AUM_SELFREPORTED"]; ok && st.Mean > 5_000_000 {
			sub.Highlights = append(sub.Highlights, "high AUM")
		}
		out[name] = sub
	}
	return out
}

func entityProfiles(frame *dataset.Frame, idColumn string, statistics map[string]*dataset.FieldStats) []EntityProfile {
	aumStats := statistics["AUM_SELFREPORTED"]

	profiles := make([]EntityProfile, 0, min(frame.Len(), maxEntityProfiles))
	for _, row := range frame.Head(maxEntityProfiles) {
		profile := EntityProfile{
			AgentID:      cellString(row[idColumn]),
			AUM:          cellFloat(row["AUM_SELFREPORTED"]),
			NPSScore:     cellFloat(row["NPS_SCORE"]),
			Tenure:       cellFloat(row["AGENT_TENURE"]),
			PoliciesSold: cellFloat(row["NO_OF_UNIQUE_POLICIES_SOLD_LAST_12_MONTHS"]),
			Complaints:   cellFloat(row["COMPLAINTS_LAST_12_MONTHS"]),
		}
		if s, ok := row["Segment"].(string); ok {
			profile.Segment = s
		}
		if aumStats != nil {
			switch {
			case profile.AUM >= aumStats.Q90:
				profile.Tier = "platinum"
			case profile.AUM >= aumStats.Q75:
				profile.Tier = "gold"
			default:
				profile.Tier = "silver"
			}
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

func recommendations(statistics map[string]*dataset.FieldStats, criteria *Criteria) []string {
	var recs []string
	if st, ok := statistics["NPS_SCORE"]; ok && st.Mean >= 8 {
		recs = append(recs, "Include a referral or advocacy component to capitalize on satisfaction")
	}
	if st, ok := statistics["AUM_SELFREPORTED"]; ok && st.Mean > 5_000_000 {
		recs = append(recs, "Assign dedicated relationship managers for top-tier agents")
	}
	if criteria.Priority == "quality_over_quantity" {
		recs = append(recs, "Favor depth of contact over reach when allocating budget")
	}
	if len(recs) == 0 {
		recs = append(recs, "Run an A/B message test before committing the full budget")
	}
	return recs
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

func cellFloat(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
