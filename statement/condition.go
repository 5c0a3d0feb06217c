package statement

import (
	"fmt"
	"strings"

	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/transpile"
)

// Condition is a WHERE, HAVING or JOIN predicate carrying its rendered
// template SQL and the named parameters bound into it. Conditions are built
// eagerly; construction problems are recorded and surface through Err before
// any SQL executes.
type Condition interface {
	// SQL returns the condition's template rendering.
	SQL() string
	// Parameters returns the named parameters referenced by the SQL text.
	Parameters() *transpile.Parameters
	// Err returns the construction error carried by the condition, if any.
	Err() error
}

// comparison is a single operand/operator/values condition.
type comparison struct {
	sql    string
	params *transpile.Parameters
	err    error
}

func (c *comparison) SQL() string                       { return c.sql }
func (c *comparison) Parameters() *transpile.Parameters { return c.params }
func (c *comparison) Err() error                        { return c.err }

// NewCondition builds a condition from an operand, a comparison operator and
// right-hand values. The operand is a *schema.Column, a *schema.Function or
// a scalar *Select subquery; anything else is an error. Values may be schema
// items (rendered as SQL text), *Select subqueries (inlined in parentheses
// with the trailing semicolon stripped and their parameters merged) or
// scalars, which run through the operand's raw conversion pipeline and bind
// to a fresh globally unique named parameter.
func NewCondition(operand any, op Op, values ...any) Condition {
	c := &comparison{params: transpile.Named()}
	if !op.Valid() {
		c.err = fmt.Errorf("statement: unknown operator Op(%d)", int(op))
		return c
	}
	if want := op.valueCount(); want >= 0 && len(values) != want {
		c.err = NewOperatorArityError(op, want, len(values))
		return c
	}
	if op.set() && len(values) == 0 {
		c.err = NewOperatorArityError(op, 1, 0)
		return c
	}
	left, item, err := c.operand(operand)
	if err != nil {
		c.err = err
		return c
	}
	rendered := make([]string, 0, len(values))
	for _, value := range values {
		text, err := c.value(operand, item, value)
		if err != nil {
			c.err = err
			return c
		}
		rendered = append(rendered, text)
	}
	c.sql = renderComparison(left, op, rendered)
	return c
}

// operand renders the left-hand side and resolves the item whose conversion
// pipeline scalar values run through.
func (c *comparison) operand(operand any) (string, schema.Item, error) {
	switch v := operand.(type) {
	case *schema.Column:
		sql, err := v.SQL()
		return sql, v, err
	case *schema.Function:
		sql, err := v.SQL()
		return sql, v, err
	case *Select:
		sub, params, err := v.subquery()
		if err != nil {
			return "", nil, err
		}
		if err := c.params.Merge(params); err != nil {
			return "", nil, err
		}
		item, err := v.scalarItem()
		if err != nil {
			return "", nil, err
		}
		return "(" + sub + ")", item, nil
	default:
		return "", nil, fmt.Errorf("statement: unsupported condition operand %T", operand)
	}
}

// value renders one right-hand value, binding scalars to fresh parameters.
func (c *comparison) value(operand any, item schema.Item, value any) (string, error) {
	switch v := value.(type) {
	case *schema.Column:
		return v.SQL()
	case *schema.Function:
		return v.SQL()
	case *Select:
		sub, params, err := v.subquery()
		if err != nil {
			return "", err
		}
		if err := c.params.Merge(params); err != nil {
			return "", err
		}
		return "(" + sub + ")", nil
	default:
		name, err := operandParameterName(operand)
		if err != nil {
			return "", err
		}
		raw, err := schema.ToRawValue(item, v)
		if err != nil {
			return "", err
		}
		if err := c.params.Add(name, raw); err != nil {
			return "", err
		}
		return ":" + name, nil
	}
}

// operandParameterName generates a fresh parameter name for a scalar value
// bound against the operand.
func operandParameterName(operand any) (string, error) {
	switch v := operand.(type) {
	case *schema.Column:
		return v.ParameterName()
	case *schema.Function:
		return v.ParameterName()
	case *Select:
		return v.parameterName()
	default:
		return "", fmt.Errorf("statement: unsupported condition operand %T", operand)
	}
}

func renderComparison(left string, op Op, values []string) string {
	sql := left + " " + op.SQL()
	switch {
	case op.valueCount() == 0:
		return sql
	case op == OpBetween || op == OpNotBetween:
		return sql + " " + values[0] + " AND " + values[1]
	case op.set():
		return sql + " (" + strings.Join(values, ", ") + ")"
	default:
		return sql + " " + values[0]
	}
}

// compound is two conditions joined by a logical operator.
type compound struct {
	sql    string
	params *transpile.Parameters
	err    error
}

func (c *compound) SQL() string                       { return c.sql }
func (c *compound) Parameters() *transpile.Parameters { return c.params }
func (c *compound) Err() error                        { return c.err }

// Combine joins two conditions with a logical operator, merging their
// parameter collections. A name collision means parameter generation broke
// and fails fast with a DuplicateParameterError.
func Combine(left Condition, op LogicalOp, right Condition) Condition {
	c := &compound{params: transpile.Named()}
	if left == nil || right == nil {
		c.err = fmt.Errorf("statement: %s combines two conditions, got nil", op)
		return c
	}
	if err := left.Err(); err != nil {
		c.err = err
		return c
	}
	if err := right.Err(); err != nil {
		c.err = err
		return c
	}
	if err := c.params.Merge(left.Parameters()); err != nil {
		c.err = err
		return c
	}
	if err := c.params.Merge(right.Parameters()); err != nil {
		c.err = err
		return c
	}
	c.sql = "(" + left.SQL() + " " + string(op) + " " + right.SQL() + ")"
	return c
}

// And combines conditions left to right with AND.
func And(first, second Condition, rest ...Condition) Condition {
	cond := Combine(first, LogicalAnd, second)
	for _, r := range rest {
		cond = Combine(cond, LogicalAnd, r)
	}
	return cond
}

// Or combines conditions left to right with OR.
func Or(first, second Condition, rest ...Condition) Condition {
	cond := Combine(first, LogicalOr, second)
	for _, r := range rest {
		cond = Combine(cond, LogicalOr, r)
	}
	return cond
}
