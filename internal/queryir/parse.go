package queryir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/simdb/internal/value"
)

// ParseError reports a parameter name or constraint that cannot be parsed.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Message)
}

// IsParseError reports whether err wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ParseParam parses "module.name". The module is everything before the
// first dot and the name everything after the last, so "a.b.c" names
// parameter c of module a.
func ParseParam(text string) (Param, error) {
	text = strings.TrimSpace(text)
	first, last := strings.Index(text, "."), strings.LastIndex(text, ".")
	if first <= 0 || last == len(text)-1 {
		return Param{}, &ParseError{Input: text, Message: "want module.name"}
	}
	return Param{Module: text[:first], Name: text[last+1:]}, nil
}

// Parse parses a constraint. Operands are upper-cased first, so symbolic
// matching is case-insensitive.
//
// Grammar, checked in order:
//
//	...!...        Default (parameter absent)
//	(!,v1,v2,...)  Default, or present with one of v1, v2, ...
//	<>v            NotEqual
//	<v             Less (v numeric)
//	>v             Greater (v numeric)
//	(v1,v2,...)    In
//	v              Equal
func Parse(text string) (Constraint, error) {
	val := value.Normalize(strings.TrimSpace(text))

	if strings.Contains(val, "!") {
		if rest, ok := strings.CutPrefix(val, "(!,"); ok {
			elems, _ := value.SplitList("(" + rest)
			if len(elems) == 0 {
				return nil, &ParseError{Input: text, Message: "empty default list"}
			}
			return Default{Allowed: coerceList(elems)}, nil
		}
		return Default{}, nil
	}

	if rest, ok := strings.CutPrefix(val, "<>"); ok {
		return NotEqual{Value: value.Coerce(rest)}, nil
	}
	if rest, ok := strings.CutPrefix(val, "<"); ok {
		f, err := numericOperand(text, rest)
		if err != nil {
			return nil, err
		}
		return Less{Bound: f}, nil
	}
	if rest, ok := strings.CutPrefix(val, ">"); ok {
		f, err := numericOperand(text, rest)
		if err != nil {
			return nil, err
		}
		return Greater{Bound: f}, nil
	}

	if elems, ok := value.SplitList(val); ok && strings.HasPrefix(val, "(") {
		if len(elems) == 0 {
			return nil, &ParseError{Input: text, Message: "empty value list"}
		}
		return In{Values: coerceList(elems)}, nil
	}

	return Equal{Value: value.Coerce(val)}, nil
}

// ParseTerm parses a parameter name and its constraint.
func ParseTerm(param, constraint string) (Term, error) {
	p, err := ParseParam(param)
	if err != nil {
		return Term{}, err
	}
	c, err := Parse(constraint)
	if err != nil {
		return Term{}, err
	}
	return Term{Param: p, Constraint: c}, nil
}

// ParseAssignment parses "module.name=constraint", the form used on the
// command line. A missing "=constraint" part is an error.
func ParseAssignment(text string) (Term, error) {
	param, constraint, ok := strings.Cut(text, "=")
	if !ok {
		return Term{}, &ParseError{Input: text, Message: "want module.name=constraint"}
	}
	return ParseTerm(param, constraint)
}

// coerceList converts list elements using the storage class of the first.
func coerceList(elems []string) []value.Value {
	class := value.Classify(elems[0])
	out := make([]value.Value, len(elems))
	for i, e := range elems {
		out[i] = value.CoerceAs(e, class)
	}
	return out
}

func numericOperand(input, operand string) (float64, error) {
	operand = strings.TrimSpace(operand)
	if value.Classify(operand) != value.ClassNumber {
		return 0, &ParseError{Input: input, Message: fmt.Sprintf("operand %q is not numeric", operand)}
	}
	f, err := strconv.ParseFloat(operand, 64)
	if err != nil {
		return 0, &ParseError{Input: input, Message: err.Error()}
	}
	return f, nil
}
