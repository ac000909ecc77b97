package value

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Class is the storage class of a textual value: the configuration column
// it is written to and compared against.
type Class int

const (
	// ClassSymbol values live in configuration.value_string.
	ClassSymbol Class = iota
	// ClassNumber values live in configuration.value_float.
	ClassNumber
)

// Column returns the configuration column holding values of this class.
func (c Class) Column() string {
	if c == ClassNumber {
		return "value_float"
	}
	return "value_string"
}

func (c Class) String() string {
	if c == ClassNumber {
		return "number"
	}
	return "symbol"
}

var upper = cases.Upper(language.Und)

// Classify decides the storage class of text.
//
// Text is numeric when it parses as a float and contains no hexadecimal
// marker; "0x1F" and "1e3x" stay symbolic. Classification never fails.
func Classify(text string) Class {
	t := strings.TrimSpace(text)
	if strings.ContainsAny(t, "xX") {
		return ClassSymbol
	}
	if _, err := strconv.ParseFloat(t, 64); err != nil {
		return ClassSymbol
	}
	return ClassNumber
}

// ClassifyList classifies a sequence literal by its first element. Text that
// is not a sequence is classified as a whole.
func ClassifyList(text string) Class {
	elems, ok := SplitList(text)
	if !ok || len(elems) == 0 {
		return Classify(text)
	}
	return Classify(elems[0])
}

// Coerce converts text to its typed form: a Number when Classify says so,
// otherwise a Symbol normalized to NFC and upper-cased.
func Coerce(text string) Value {
	if Classify(text) == ClassNumber {
		f, _ := strconv.ParseFloat(strings.TrimSpace(text), 64)
		return Number(f)
	}
	return Symbol(Normalize(text))
}

// CoerceAs converts text to the given class. Numeric text that does not
// parse falls back to a Symbol.
func CoerceAs(text string, class Class) Value {
	if class == ClassNumber {
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return Number(f)
		}
	}
	return Symbol(Normalize(text))
}

// Normalize returns the case-insensitive comparison form of a symbol.
func Normalize(text string) string {
	return upper.String(norm.NFC.String(text))
}

// SplitList splits a sequence literal such as "[1, 2]" or "(a,'b')" into
// its trimmed, unquoted elements. ok is false when text is not bracketed.
func SplitList(text string) (elems []string, ok bool) {
	t := strings.TrimSpace(text)
	if len(t) < 2 {
		return nil, false
	}
	open, end := t[0], t[len(t)-1]
	if !(open == '[' && end == ']') && !(open == '(' && end == ')') {
		return nil, false
	}
	inner := strings.TrimSpace(t[1 : len(t)-1])
	if inner == "" {
		return []string{}, true
	}
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"'`)
		elems = append(elems, part)
	}
	return elems, true
}
