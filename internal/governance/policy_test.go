package governance

import (
	"context"
	"strings"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Goal: "Find high-value agents with excellent satisfaction"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny (empty goal)
	res2, err := engine.Evaluate(ctx, Request{Goal: "   "})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}

	// Test Deny (restricted pattern)
	if err := engine.DenyGoal(`(?i)drop\s+table`); err != nil {
		t.Fatal(err)
	}
	res3, err := engine.Evaluate(ctx, Request{Goal: "drop table campaigns"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res3.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res3.Effect)
	}
}

func TestDefaultPolicyEngine_MaxLength(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	engine.MaxGoalLength = 50

	res, err := engine.Evaluate(context.Background(), Request{Goal: strings.Repeat("x", 51)})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res.Effect)
	}
}
