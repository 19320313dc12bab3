package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterJSONShape(t *testing.T) {
	f := Any(
		MoveEventType("0xaa::pool::SwapEvent"),
		And(Package("0xaa"), Sender("0xbb")),
	)
	require.NoError(t, f.Validate())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Any":[{"MoveEventType":"0xaa::pool::SwapEvent"},{"And":[{"Package":"0xaa"},{"Sender":"0xbb"}]}]}`, string(data))
}

func TestFilterValidate(t *testing.T) {
	cases := map[string]Filter{
		"empty":         {},
		"two keys":      {"Package": "0x1", "Sender": "0x2"},
		"unknown":       {"Module": "pool"},
		"empty string":  MoveEventType(""),
		"no children":   All(),
		"bad child":     Or(Package("0x1"), Filter{}),
		"wrong payload": {"Package": 1},
	}
	for name, f := range cases {
		assert.Error(t, f.Validate(), name)
	}
}

func TestCombine(t *testing.T) {
	_, err := Combine(nil, true)
	require.Error(t, err)

	single := Package("0x1")
	got, err := Combine([]Filter{single}, true)
	require.NoError(t, err)
	assert.Equal(t, single, got)

	got, err = Combine([]Filter{single, Sender("0x2")}, false)
	require.NoError(t, err)
	assert.Contains(t, got, "Any")

	got, err = Combine([]Filter{single, Sender("0x2")}, true)
	require.NoError(t, err)
	assert.Contains(t, got, "All")
}
