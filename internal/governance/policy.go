package governance

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the campaign goal to be evaluated before planning.
type Request struct {
	Goal string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates campaign goals against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	MaxGoalLength int
	DeniedRegex   []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		MaxGoalLength: 2000,
		DeniedRegex:   make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) DenyGoal(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return Result{
			Effect: EffectDeny,
			Reason: "Campaign goal is empty",
		}, nil
	}

	if e.MaxGoalLength > 0 && len(req.Goal) > e.MaxGoalLength {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Campaign goal exceeds maximum length of %d characters", e.MaxGoalLength),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Goal) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Goal matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
