package push

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stage int

func (s stage) String() string { return [...]string{"draft", "ready"}[s] }

func TestStringify(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "abc", "abc"},
		{"empty string", "", ""},
		{"true", true, "true"},
		{"false", false, "false"},
		{"json number int", json.Number("42"), "42"},
		{"json number float", json.Number("4.50"), "4.5"},
		{"json number integral float", json.Number("1.0"), "1"},
		{"json number exponent", json.Number("1e2"), "100"},
		{"json number negative zero", json.Number("-0.0"), "0"},
		{"json number big integer", json.Number("12345678901234567890123"), "12345678901234567890123"},
		{"json number inexact fraction", json.Number("0.1000000000000000000001"), "0.1000000000000000000001"},
		{"json number overflow", json.Number("1e400"), "1e400"},
		{"float integral", float64(5), "5"},
		{"float fraction", 2.5, "2.5"},
		{"float negative", -0.25, "-0.25"},
		{"float huge", 1e21, "1e+21"},
		{"float tiny", 1e-7, "1e-07"},
		{"float32", float32(1.5), "1.5"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"int", 7, "7"},
		{"int64", int64(-9), "-9"},
		{"uint8", uint8(200), "200"},
		{"stringer", stage(1), "ready"},
		{"slice", []any{1, "a", true}, `[1,"a",true]`},
		{"nil slice", []string(nil), "null"},
		{"map sorted keys", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"nested json numbers", map[string]any{"n": json.Number("3")}, `{"n":3}`},
		{"struct", struct {
			ID int `json:"id"`
		}{ID: 3}, `{"id":3}`},
		{"nil pointer", (*int)(nil), "null"},
		{"nil stringer pointer", (*time.Time)(nil), "null"},
		{"nil stringer pointer in data", map[string]any{"at": (*time.Time)(nil)}, `{"at":null}`},
		{"pointer", func() *int { v := 11; return &v }(), "11"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Stringify(tc.in))
		})
	}
}

func TestStringify_Deterministic(t *testing.T) {
	in := map[string]any{"z": []any{1.0, false}, "a": map[string]any{"y": nil, "x": 2}}
	first := Stringify(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Stringify(in))
	}
}

func TestStringifyData_AllValuesAreStrings(t *testing.T) {
	var data map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"count":3,"ratio":0.5,"flag":true,"obj":{"k":"v"},"list":[1,2],"none":null,"s":"x"}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&data))

	out := StringifyData(data)

	assert.Equal(t, map[string]string{
		"count": "3",
		"ratio": "0.5",
		"flag":  "true",
		"obj":   `{"k":"v"}`,
		"list":  "[1,2]",
		"none":  "null",
		"s":     "x",
	}, out)
}

func TestStringifyData_NilInput(t *testing.T) {
	out := StringifyData(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}
