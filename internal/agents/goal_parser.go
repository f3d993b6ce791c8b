package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/campaigner/internal/llm"
)

const parserSystem = "You are an expert at analyzing marketing campaign goals and extracting structured criteria for customer segmentation."

var validOperators = map[string]bool{
	">": true, ">=": true, "<": true, "<=": true, "==": true, "!=": true,
}

// GoalParser turns a natural-language campaign goal into structured criteria
// via a single LLM call.
type GoalParser struct {
	LLM     *llm.Provider
	Prompts *PromptManager
}

func NewGoalParser(provider *llm.Provider, prompts *PromptManager) *GoalParser {
	return &GoalParser{LLM: provider, Prompts: prompts}
}

func (g *GoalParser) Parse(ctx context.Context, goal string) (*Criteria, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("no goal provided")
	}

	var criteria Criteria
	prompt := g.Prompts.ParserPrompt(goal)
	if err := g.LLM.QueryJSON(ctx, parserSystem, prompt, &criteria); err != nil {
		return nil, fmt.Errorf("goal parsing failed: %w", err)
	}

	if criteria.Objective == "" {
		return nil, fmt.Errorf("goal parsing failed: model returned no objective")
	}
	for _, c := range criteria.Constraints {
		if !validOperators[c.Operator] {
			return nil, fmt.Errorf("goal parsing failed: unsupported operator %q for field %s", c.Operator, c.Field)
		}
	}

	return &criteria, nil
}
