package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumberOrStringUnmarshal(t *testing.T) {
	var payload struct {
		A NumberOrString `json:"a"`
		B NumberOrString `json:"b"`
		C NumberOrString `json:"c"`
		D NumberOrString `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a": 4.5, "b": " 12 ", "c": null}`), &payload)
	require.NoError(t, err)
	require.Equal(t, "4.5", payload.A.String())
	require.Equal(t, "12", payload.B.String())
	require.Empty(t, payload.C)
	require.Empty(t, payload.D)
}

func TestNumberOrStringKeepsNonNumericStrings(t *testing.T) {
	var v NumberOrString
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &v))
	require.Equal(t, NumberOrString("abc"), v)
}

func TestNumberOrStringRejectsOtherTypes(t *testing.T) {
	var v NumberOrString
	require.Error(t, json.Unmarshal([]byte(`true`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
	require.Error(t, json.Unmarshal([]byte(`[1]`), &v))
}
