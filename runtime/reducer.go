package runtime

import (
	"github.com/dekarrin/gazelle/grammar"
	"github.com/dekarrin/gazelle/symbol"
)

// Value is whatever a Reducer produces for a reduction: a semantic value, a
// CST node, or nothing at all for validate-only parsing. The driver never
// inspects it beyond passing it back as an RHS element of a later reduction.
type Value interface{}

// Reducer is the single capability the driver needs to turn a completed
// rule's popped RHS values into the value pushed for its LHS.
// Implementations choose their own Value
// representation — a typed AST node, a CST, or nil for parse-for-validity.
//
// Reduce is called once per Reduce event of a rule that does not carry one
// of the normalizer's synthetic modifier actions (those values are built by
// synthesizeValue and never reach the Reducer), after the rule's RHS values have
// been popped in left-to-right order, and before the LHS goto is pushed. An
// error aborts the parse; it surfaces from Push/Finish wrapped in a
// gxerrors.ParseError.
type Reducer interface {
	Reduce(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhsValues []Value) (Value, error)
}

// ReducerFunc adapts a plain function to the Reducer interface.
type ReducerFunc func(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhsValues []Value) (Value, error)

func (f ReducerFunc) Reduce(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhsValues []Value) (Value, error) {
	return f(rule, action, lhs, rhsValues)
}

// Node is one CST node: a rule and its ordered children, each either a
// nested *Node (from an earlier reduction) or a Token (from a shift).
type Node struct {
	Rule     grammar.RuleID
	Action   grammar.Action
	LHS      symbol.ID
	Children []Value
}

// CSTReducer builds a concrete syntax tree: every reduction it receives
// becomes a *Node whose children are exactly the popped values. Reductions
// of normalizer-synthesized modifier rules do not reach it; they appear in
// the tree as the slice or nil value synthesizeValue builds.
type CSTReducer struct{}

// NewCSTReducer returns a Reducer that builds a Node for every reduction it
// receives, regardless of rule or action; it never returns an error.
func NewCSTReducer() *CSTReducer {
	return &CSTReducer{}
}

func (c *CSTReducer) Reduce(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhsValues []Value) (Value, error) {
	return &Node{Rule: rule, Action: action, LHS: lhs, Children: rhsValues}, nil
}

// DiscardReducer implements parse-for-validity: every reduction produces nil,
// so the only observable outcome is whether Finish returns an error.
type DiscardReducer struct{}

func (DiscardReducer) Reduce(rule grammar.RuleID, action grammar.Action, lhs symbol.ID, rhsValues []Value) (Value, error) {
	return nil, nil
}

// synthesizeValue materializes the built-in modifier actions without
// involving the caller's Reducer at all: the normalizer-synthesized
// rules always carry one of these tags, and their shape is fixed regardless
// of grammar.
func synthesizeValue(action grammar.Action, rhsValues []Value) (Value, bool) {
	switch action {
	case grammar.ActionOptNone:
		return nil, true
	case grammar.ActionOptSome:
		return rhsValues[0], true
	case grammar.ActionVecEmpty:
		return []Value{}, true
	case grammar.ActionVecSingle:
		return []Value{rhsValues[0]}, true
	case grammar.ActionVecAppend:
		// rhsValues is [existing-vec, separator?, new-element] or
		// [existing-vec, new-element] depending on whether the rule has a
		// separator symbol; the normalizer always places the vector first
		// and the new element last.
		vec, _ := rhsValues[0].([]Value)
		elem := rhsValues[len(rhsValues)-1]
		return append(append([]Value{}, vec...), elem), true
	default:
		return nil, false
	}
}
