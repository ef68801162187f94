package sheetcalc

import (
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the value variants a cell can hold.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a cell value: a number, a text, a boolean, or empty.
// The zero Value is Empty.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

// Empty is the value of a cell that holds nothing.
var Empty = Value{}

// Number wraps a float64 as a Value.
func Number(v float64) Value { return Value{Kind: KindNumber, Num: v} }

// Text wraps a string as a Value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Boolean wraps a bool as a Value.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsEmpty reports whether the value is the empty variant.
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// AsNumber coerces the value to a number. Booleans become 1 or 0, empty
// becomes 0, and text is parsed after trimming whitespace with the empty
// string reading as 0. The second return is false when the value has no
// numeric reading.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) {
			return 0, false
		}
		return v.Num, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindEmpty:
		return 0, true
	case KindText:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsText renders the value the way a cell displays it.
func (v Value) AsText() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}

// IsTruthy reports whether the value selects the first branch of IF:
// nonzero numbers, nonempty text, and true are truthy.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindText:
		return v.Str != ""
	case KindBool:
		return v.Bool
	}
	return false
}

// Compare orders two values for the comparison operators. When both
// values coerce to numbers the comparison is numeric; otherwise both
// render to text and compare lexically. The result is -1, 0, or 1;
// the ordering is total and never fails.
func Compare(a, b Value) int {
	an, aok := a.AsNumber()
	bn, bok := b.AsNumber()
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	as, bs := a.AsText(), b.AsText()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
