package compliance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "other"
	}
}

// truthyTokens are matched case-insensitively after trimming whitespace.
var truthyTokens = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"y":    {},
	"on":   {},
}

// Value is a single check value as submitted by an agent. The zero Value is null.
// A decoded Value keeps its original JSON text and encodes back to it unchanged.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	raw  json.RawMessage
}

func Null() Value {
	return Value{kind: KindNull}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(n int) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.Itoa(n))}
}

// Number returns a numeric value. NaN and infinities have no JSON form and
// become null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Truthy reports whether the value counts as a passing boolean signal.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		// Out of range literals parse to ±Inf or 0 alongside ErrRange.
		f, err := strconv.ParseFloat(v.num.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return false
		}
		return f != 0
	case KindString:
		_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(v.str))]
		return ok
	default:
		return false
	}
}

// Minutes returns the value as a whole number. Fractional numbers are truncated
// toward zero, strings must hold a decimal integer and booleans count as 0 or 1.
func (v Value) Minutes() (int, bool) {
	switch v.kind {
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindNumber:
		if n, err := strconv.Atoi(v.num.String()); err == nil {
			return minutesInRange(n)
		}
		f, err := v.num.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		t := math.Trunc(f)
		if t > math.MaxInt32 || t < math.MinInt32 {
			return 0, false
		}
		return int(t), true
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.str))
		if err != nil {
			return 0, false
		}
		return minutesInRange(n)
	default:
		return 0, false
	}
}

// minutesInRange rejects values the inactivity_sleep_minutes column cannot hold.
func minutesInRange(n int) (int, bool) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return n, true
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty check value")
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	switch data[0] {
	case 'n':
		*v = Value{kind: KindNull, raw: raw}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Value{kind: KindBool, b: b, raw: raw}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{kind: KindString, str: s, raw: raw}
	case '{', '[':
		if !json.Valid(data) {
			return fmt.Errorf("invalid check value %q", data)
		}
		*v = Value{kind: KindOther, raw: raw}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value{kind: KindNumber, num: n, raw: raw}
	}
	return nil
}
