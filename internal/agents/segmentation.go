package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rahul/campaigner/internal/dataset"
)

// statFields are the numeric columns compared before/after filtering.
var statFields = []string{"AUM_SELFREPORTED", "NPS_SCORE", "AGENT_TENURE"}

// Segmenter filters the agent population with the parsed constraint
// predicates and recomputes before/after statistics.
type Segmenter struct {
	IDColumn string
}

func NewSegmenter(idColumn string) *Segmenter {
	return &Segmenter{IDColumn: idColumn}
}

func (s *Segmenter) Segment(ctx context.Context, criteria *Criteria, data *DatasetSummary) (*Segmentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if criteria == nil {
		return nil, fmt.Errorf("segmentation failed: no criteria provided")
	}
	if data == nil || !data.Success || data.Handle == nil {
		return nil, fmt.Errorf("segmentation failed: no valid agent data provided")
	}

	frame := data.Handle
	filtered := frame.Filter(func(row dataset.Row) bool {
		for _, c := range criteria.Constraints {
			if !frame.HasColumn(c.Field) {
				continue
			}
			if !matchConstraint(row, c) {
				return false
			}
		}
		return true
	})

	out := &Segmentation{
		Success:       true,
		Total:         frame.Len(),
		FilteredCount: filtered.Len(),
		IDs:           collectIDs(filtered, s.IDColumn),
		Sample:        filtered.Head(5),
		Filtered:      filtered,
		Stats: SegmentStats{
			CriteriaCount: len(criteria.Constraints),
			Objective:     criteria.Objective,
			Fields:        make(map[string]FieldComparison),
		},
	}
	if frame.Len() > 0 {
		out.Stats.SegmentationRate = float64(filtered.Len()) / float64(frame.Len())
	}

	for _, field := range statFields {
		if !frame.HasColumn(field) {
			continue
		}
		cmp := FieldComparison{Original: frame.Stats(field)}
		if filtered.Len() > 0 {
			cmp.Filtered = filtered.Stats(field)
		}
		out.Stats.Fields[field] = cmp
	}

	return out, nil
}

func matchConstraint(row dataset.Row, c Constraint) bool {
	val := row[c.Field]

	switch c.Operator {
	case "==", "!=":
		eq := looseEqual(val, c.Value)
		if c.Operator == "==" {
			return eq
		}
		return !eq
	}

	// Ordered comparisons require numeric values on both sides. Rows with
	// missing or non-numeric cells never match.
	rv, ok := val.(float64)
	if !ok {
		return false
	}
	cv, ok := toFloat(c.Value)
	if !ok {
		return false
	}

	switch c.Operator {
	case ">":
		return rv > cv
	case ">=":
		return rv >= cv
	case "<":
		return rv < cv
	case "<=":
		return rv <= cv
	}
	return false
}

func looseEqual(a, b any) bool {
	if af, ok := a.(float64); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	as, ok := a.(string)
	bs, bok := b.(string)
	return ok && bok && as == bs
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func collectIDs(frame *dataset.Frame, idColumn string) []string {
	ids := make([]string, 0, frame.Len())
	for _, row := range frame.Rows {
		switch v := row[idColumn].(type) {
		case float64:
			ids = append(ids, strconv.FormatFloat(v, 'f', -1, 64))
		case string:
			ids = append(ids, v)
		}
	}
	return ids
}
