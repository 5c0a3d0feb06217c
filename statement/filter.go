package statement

// Filter constructors, one per comparison operator. The operand is a
// *schema.Column, *schema.Function or scalar *Select subquery; values follow
// the operator's arity.

// Equal returns operand = value.
func Equal(operand, value any) Condition {
	return NewCondition(operand, OpEqual, value)
}

// NotEqual returns operand != value.
func NotEqual(operand, value any) Condition {
	return NewCondition(operand, OpNotEqual, value)
}

// GreaterThan returns operand > value.
func GreaterThan(operand, value any) Condition {
	return NewCondition(operand, OpGreaterThan, value)
}

// GreaterThanOrEqual returns operand >= value.
func GreaterThanOrEqual(operand, value any) Condition {
	return NewCondition(operand, OpGreaterThanOrEqual, value)
}

// LessThan returns operand < value.
func LessThan(operand, value any) Condition {
	return NewCondition(operand, OpLessThan, value)
}

// LessThanOrEqual returns operand <= value.
func LessThanOrEqual(operand, value any) Condition {
	return NewCondition(operand, OpLessThanOrEqual, value)
}

// Like returns operand LIKE value.
func Like(operand, value any) Condition {
	return NewCondition(operand, OpLike, value)
}

// NotLike returns operand NOT LIKE value.
func NotLike(operand, value any) Condition {
	return NewCondition(operand, OpNotLike, value)
}

// Between returns operand BETWEEN low AND high.
func Between(operand, low, high any) Condition {
	return NewCondition(operand, OpBetween, low, high)
}

// NotBetween returns operand NOT BETWEEN low AND high.
func NotBetween(operand, low, high any) Condition {
	return NewCondition(operand, OpNotBetween, low, high)
}

// In returns operand IN (values...).
func In(operand any, values ...any) Condition {
	return NewCondition(operand, OpIn, values...)
}

// NotIn returns operand NOT IN (values...).
func NotIn(operand any, values ...any) Condition {
	return NewCondition(operand, OpNotIn, values...)
}

// IsNull returns operand IS NULL.
func IsNull(operand any) Condition {
	return NewCondition(operand, OpIsNull)
}

// IsNotNull returns operand IS NOT NULL.
func IsNotNull(operand any) Condition {
	return NewCondition(operand, OpIsNotNull)
}
