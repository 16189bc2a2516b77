package qdrant

import (
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertFilterSet converts a vectordb.FilterSet to a Qdrant filter. A filter without
// any convertible condition becomes nil.
func convertFilterSet(filters *vectordb.FilterSet) *qdrant.Filter {
	if filters == nil {
		return nil
	}

	filter := &qdrant.Filter{
		Must:    convertConditionSet(filters.Must),
		Should:  convertConditionSet(filters.Should),
		MustNot: convertConditionSet(filters.MustNot),
	}
	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil
	}
	return filter
}

func convertConditionSet(cs *vectordb.ConditionSet) []*qdrant.Condition {
	if cs == nil {
		return nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		if cond := convertCondition(c); cond != nil {
			conditions = append(conditions, cond)
		}
	}
	return conditions
}

func convertCondition(c vectordb.FilterCondition) *qdrant.Condition {
	switch cond := c.(type) {
	case *vectordb.MatchCondition:
		return convertMatch(cond)
	case *vectordb.MatchAnyCondition:
		key := vectordb.FieldPath(cond.Field, cond.FieldType)
		if strs, ok := asStrings(cond.Values); ok {
			return qdrant.NewMatchKeywords(key, strs...)
		}
		if ints, ok := asInts(cond.Values); ok {
			return qdrant.NewMatchInts(key, ints...)
		}
	case *vectordb.MatchExceptCondition:
		key := vectordb.FieldPath(cond.Field, cond.FieldType)
		if strs, ok := asStrings(cond.Values); ok {
			return qdrant.NewMatchExceptKeywords(key, strs...)
		}
		if ints, ok := asInts(cond.Values); ok {
			return qdrant.NewMatchExceptInts(key, ints...)
		}
	case *vectordb.NumericRangeCondition:
		r := cond.Range
		if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
			return nil
		}
		return qdrant.NewRange(vectordb.FieldPath(cond.Field, cond.FieldType), &qdrant.Range{
			Gt: r.Gt, Gte: r.Gte, Lt: r.Lt, Lte: r.Lte,
		})
	case *vectordb.TimeRangeCondition:
		r := cond.Range
		if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
			return nil
		}
		return qdrant.NewDatetimeRange(vectordb.FieldPath(cond.Field, cond.FieldType), &qdrant.DatetimeRange{
			Gt:  toTimestamp(r.Gt),
			Gte: toTimestamp(r.Gte),
			Lt:  toTimestamp(r.Lt),
			Lte: toTimestamp(r.Lte),
		})
	}
	return nil
}

func convertMatch(c *vectordb.MatchCondition) *qdrant.Condition {
	key := vectordb.FieldPath(c.Field, c.FieldType)
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(key, v)
	case bool:
		return qdrant.NewMatchBool(key, v)
	case int:
		return qdrant.NewMatchInt(key, int64(v))
	case int64:
		return qdrant.NewMatchInt(key, v)
	case float64:
		// JSON numbers decode as float64
		if v == float64(int64(v)) {
			return qdrant.NewMatchInt(key, int64(v))
		}
	}
	return nil
}

func asStrings(values []any) ([]string, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asInts(values []any) ([]int64, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]int64, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int:
			out = append(out, int64(n))
		case int64:
			out = append(out, n)
		case float64:
			out = append(out, int64(n))
		default:
			return nil, false
		}
	}
	return out, true
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// ── Result Conversion ────────────────────────────────────────────────────────

func parseSearchResults(resp []*qdrant.ScoredPoint) ([]vectordb.SearchResult, error) {
	results := make([]vectordb.SearchResult, 0, len(resp))
	for _, r := range resp {
		id, err := extractPointID(r.GetId())
		if err != nil {
			return nil, err
		}
		results = append(results, vectordb.SearchResult{
			ID:      id,
			Score:   r.GetScore(),
			Payload: convertPayload(r.GetPayload()),
		})
	}
	return results, nil
}

func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("qdrant: nil point id")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("qdrant: unexpected point id type %T", v)
	}
}

// convertPayload converts a protobuf payload to plain Go values.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}
