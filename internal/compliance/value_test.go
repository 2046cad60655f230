package compliance

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeValue(t *testing.T, s string) Value {
	t.Helper()
	var v Value
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestTruthyStrings(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "True", "yes", "YES", "y", "Y", "on", "On", " yes "} {
		assert.True(t, String(s).Truthy(), s)
	}
	for _, s := range []string{"0", "false", "no", "", "off", "enabled", "2", "yess"} {
		assert.False(t, String(s).Truthy(), s)
	}
}

func TestTruthyNumbers(t *testing.T) {
	assert.False(t, Int(0).Truthy())
	assert.False(t, Number(0.0).Truthy())
	assert.True(t, Int(1).Truthy())
	assert.True(t, Int(-3).Truthy())
	assert.True(t, Number(0.5).Truthy())
}

func TestTruthyOutOfRangeNumbers(t *testing.T) {
	assert.True(t, decodeValue(t, `1e400`).Truthy())
	assert.True(t, decodeValue(t, `-1e400`).Truthy())
	assert.False(t, decodeValue(t, `1e-400`).Truthy())
	assert.False(t, decodeValue(t, `0e400`).Truthy())
}

func TestNumberNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := Number(f)
		assert.Equal(t, KindNull, v.Kind())

		out, err := json.Marshal(CheckSet{CheckInactivitySleepMinutes: v})
		require.NoError(t, err)
		assert.JSONEq(t, `{"inactivity_sleep_minutes":null}`, string(out))
	}
}

func TestTruthyOtherKinds(t *testing.T) {
	assert.False(t, Value{}.Truthy())
	assert.False(t, Null().Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.False(t, decodeValue(t, `{"enabled":true}`).Truthy())
	assert.False(t, decodeValue(t, `[1]`).Truthy())
}

func TestUnmarshalKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`false`, KindBool},
		{`12`, KindNumber},
		{`-1.5e3`, KindNumber},
		{`"yes"`, KindString},
		{`{"a":1}`, KindOther},
		{`[1,2]`, KindOther},
	}

	for _, tt := range tests {
		v := decodeValue(t, tt.in)
		assert.Equal(t, tt.kind, v.Kind(), tt.in)

		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, tt.in, string(out))
	}
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{"integer", `15`, 15, true},
		{"negative", `-2`, -2, true},
		{"fraction truncated", `5.9`, 5, true},
		{"exponent", `1e1`, 10, true},
		{"numeric string", `"12"`, 12, true},
		{"padded string", `" 8 "`, 8, true},
		{"decimal string", `"12.5"`, 0, false},
		{"word", `"never"`, 0, false},
		{"empty string", `""`, 0, false},
		{"true", `true`, 1, true},
		{"false", `false`, 0, true},
		{"null", `null`, 0, false},
		{"object", `{"m":5}`, 0, false},
		{"huge", `1e300`, 0, false},
		{"max int32", `2147483647`, 2147483647, true},
		{"min int32", `-2147483648`, -2147483648, true},
		{"above int32", `4294967301`, 0, false},
		{"below int32", `-2147483649`, 0, false},
		{"above int32 string", `"4294967301"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeValue(t, tt.in).Minutes()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMarshalConstructed(t *testing.T) {
	out, err := json.Marshal(CheckSet{
		"a": Bool(true),
		"b": Int(5),
		"c": String("on"),
		"d": Null(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true,"b":5,"c":"on","d":null}`, string(out))
}
