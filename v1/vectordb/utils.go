package vectordb

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NewFilterSet builds a FilterSet from clauses such as Must.
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must adds an AND clause.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Must = &ConditionSet{Conditions: conditions}
	}
}

// NewMetadataMatch creates an equality condition on a metadata key.
func NewMetadataMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value, FieldType: MetadataField}
}

// NewMetadataMatchExcept creates a NOT IN condition on a metadata key.
// It panics when values mix types.
func NewMetadataMatchExcept(field string, values ...any) *MatchExceptCondition {
	validateHomogeneousTypes(values)
	return &MatchExceptCondition{Field: field, Values: values, FieldType: MetadataField}
}

// MetadataEquals turns an equality map into a Must filter. Keys are sorted so the
// resulting filter is deterministic. A nil or empty map yields nil.
func MetadataEquals(filter map[string]any) *FilterSet {
	if len(filter) == 0 {
		return nil
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]FilterCondition, 0, len(keys))
	for _, k := range keys {
		conditions = append(conditions, NewMetadataMatch(k, filter[k]))
	}
	return NewFilterSet(Must(conditions...))
}

// FieldPath returns the payload path of a field, e.g. "metadata.user_id".
func FieldPath(field string, ft FieldType) string {
	if ft == MetadataField {
		return MetadataKey + "." + field
	}
	return field
}

// Matches evaluates fs against a payload in memory. Backends without native
// support for a condition type use it to post-filter candidates. A nil filter
// matches everything.
func Matches(fs *FilterSet, payload map[string]any) bool {
	if fs == nil {
		return true
	}
	if fs.Must != nil {
		for _, c := range fs.Must.Conditions {
			if !matchCondition(c, payload) {
				return false
			}
		}
	}
	if fs.Should != nil && len(fs.Should.Conditions) > 0 {
		matched := false
		for _, c := range fs.Should.Conditions {
			if matchCondition(c, payload) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if fs.MustNot != nil {
		for _, c := range fs.MustNot.Conditions {
			if matchCondition(c, payload) {
				return false
			}
		}
	}
	return true
}

func lookup(payload map[string]any, field string, ft FieldType) (any, bool) {
	if ft == MetadataField {
		meta, ok := payload[MetadataKey].(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := meta[field]
		return v, ok
	}
	v, ok := payload[field]
	return v, ok
}

func matchCondition(c FilterCondition, payload map[string]any) bool {
	switch cond := c.(type) {
	case *MatchCondition:
		v, ok := lookup(payload, cond.Field, cond.FieldType)
		return ok && equalValues(v, cond.Value)
	case *MatchAnyCondition:
		v, ok := lookup(payload, cond.Field, cond.FieldType)
		if !ok {
			return false
		}
		for _, want := range cond.Values {
			if equalValues(v, want) {
				return true
			}
		}
		return false
	case *MatchExceptCondition:
		v, ok := lookup(payload, cond.Field, cond.FieldType)
		if !ok {
			return true
		}
		for _, want := range cond.Values {
			if equalValues(v, want) {
				return false
			}
		}
		return true
	case *NumericRangeCondition:
		v, ok := lookup(payload, cond.Field, cond.FieldType)
		if !ok {
			return false
		}
		f, ok := toFloat(v)
		return ok && inNumericRange(f, cond.Range)
	case *TimeRangeCondition:
		v, ok := lookup(payload, cond.Field, cond.FieldType)
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return err == nil && inTimeRange(t, cond.Range)
	default:
		return false
	}
}

// equalValues compares payload and filter values. Numbers compare numerically and
// strings compare against the textual form of the other side, so a metadata value
// stored as "3" matches a filter on 3.
func equalValues(stored, want any) bool {
	if sf, ok := toFloat(stored); ok {
		if wf, ok := toFloat(want); ok {
			return sf == wf
		}
	}
	return Stringify(stored) == Stringify(want)
}

// Stringify renders scalar payload values the way string-only backends store them.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func inNumericRange(f float64, r NumericRange) bool {
	return (r.Gt == nil || f > *r.Gt) &&
		(r.Gte == nil || f >= *r.Gte) &&
		(r.Lt == nil || f < *r.Lt) &&
		(r.Lte == nil || f <= *r.Lte)
}

func inTimeRange(t time.Time, r TimeRange) bool {
	return (r.Gt == nil || t.After(*r.Gt)) &&
		(r.Gte == nil || !t.Before(*r.Gte)) &&
		(r.Lt == nil || t.Before(*r.Lt)) &&
		(r.Lte == nil || !t.After(*r.Lte))
}

// validateHomogeneousTypes panics on mixed value types in MatchExcept.
func validateHomogeneousTypes(values []any) {
	if len(values) <= 1 {
		return
	}

	expected := typeClass(values[0])
	if expected == "" {
		panic(fmt.Sprintf("vectordb: unsupported value type: %T", values[0]))
	}
	for i, v := range values[1:] {
		actual := typeClass(v)
		if actual == "" {
			panic(fmt.Sprintf("vectordb: unsupported value type at index %d: %T", i+1, v))
		}
		if actual != expected {
			panic(fmt.Sprintf("vectordb: mixed types not allowed: expected %s but got %s at index %d", expected, actual, i+1))
		}
	}
}

func typeClass(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case int, int64, float64:
		return "numeric"
	case bool:
		return "boolean"
	}
	return ""
}
