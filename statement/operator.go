package statement

import "fmt"

// Op is a comparison operator usable in conditions.
type Op int

// Comparison operators.
const (
	OpEqual Op = iota
	OpNotEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
	OpLike
	OpNotLike
	OpBetween
	OpNotBetween
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
)

var opText = [...]string{
	OpEqual:              "=",
	OpNotEqual:           "!=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpLike:               "LIKE",
	OpNotLike:            "NOT LIKE",
	OpBetween:            "BETWEEN",
	OpNotBetween:         "NOT BETWEEN",
	OpIn:                 "IN",
	OpNotIn:              "NOT IN",
	OpIsNull:             "IS NULL",
	OpIsNotNull:          "IS NOT NULL",
}

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	return op >= OpEqual && int(op) < len(opText)
}

// SQL returns the operator's SQL text.
func (op Op) SQL() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opText[op]
}

// String implements fmt.Stringer.
func (op Op) String() string { return op.SQL() }

// valueCount returns the exact number of right-hand values the operator
// takes, or -1 for the set operators, which take one or more.
func (op Op) valueCount() int {
	switch op {
	case OpIsNull, OpIsNotNull:
		return 0
	case OpBetween, OpNotBetween:
		return 2
	case OpIn, OpNotIn:
		return -1
	default:
		return 1
	}
}

// set reports whether the right-hand side renders as a parenthesized list.
func (op Op) set() bool {
	return op == OpIn || op == OpNotIn
}

// LogicalOp joins two conditions in a compound condition.
type LogicalOp string

// Logical operators.
const (
	LogicalAnd LogicalOp = "AND"
	LogicalOr  LogicalOp = "OR"
)

// OrderDirection is an explicit ORDER BY direction marker. Inside an OrderBy
// sequence a marker binds to the item immediately preceding it.
type OrderDirection string

// ORDER BY directions.
const (
	Ascending  OrderDirection = "ASC"
	Descending OrderDirection = "DESC"
)
