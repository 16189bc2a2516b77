package vectordb

import "time"

// FieldType says where a filtered field lives in the point payload.
type FieldType int

const (
	// InternalField is a top-level payload key such as "text".
	InternalField FieldType = iota
	// MetadataField lives under the "metadata" object of the payload.
	MetadataField
)

// MetadataKey is the payload key holding caller supplied metadata.
const MetadataKey = "metadata"

// FilterCondition is implemented by every condition type. Backends convert
// conditions to their native filter format.
type FilterCondition interface {
	IsFilterCondition()
}

// FilterSet combines Must (AND), Should (OR) and MustNot (NOT) clauses.
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMetadataMatch("user_id", "42")),
//	)
type FilterSet struct {
	Must    *ConditionSet `json:"must,omitempty"`
	Should  *ConditionSet `json:"should,omitempty"`
	MustNot *ConditionSet `json:"mustNot,omitempty"`
}

// ConditionSet is the list of conditions of one clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// MatchCondition is exact equality. Value is a string, bool or integer.
type MatchCondition struct {
	Field     string
	Value     any
	FieldType FieldType
}

func (c *MatchCondition) IsFilterCondition() {}

// MatchAnyCondition matches when the field equals one of Values.
type MatchAnyCondition struct {
	Field     string
	Values    []any
	FieldType FieldType
}

func (c *MatchAnyCondition) IsFilterCondition() {}

// MatchExceptCondition matches when the field equals none of Values.
type MatchExceptCondition struct {
	Field     string
	Values    []any
	FieldType FieldType
}

func (c *MatchExceptCondition) IsFilterCondition() {}

// NumericRange bounds a numeric field. Nil bounds are open.
type NumericRange struct {
	Gt  *float64
	Gte *float64
	Lt  *float64
	Lte *float64
}

// NumericRangeCondition filters by NumericRange.
type NumericRangeCondition struct {
	Field     string
	Range     NumericRange
	FieldType FieldType
}

func (c *NumericRangeCondition) IsFilterCondition() {}

// TimeRange bounds a timestamp field. Nil bounds are open.
type TimeRange struct {
	Gt  *time.Time
	Gte *time.Time
	Lt  *time.Time
	Lte *time.Time
}

// TimeRangeCondition filters by TimeRange. The payload value must be an RFC 3339 string.
type TimeRangeCondition struct {
	Field     string
	Range     TimeRange
	FieldType FieldType
}

func (c *TimeRangeCondition) IsFilterCondition() {}
