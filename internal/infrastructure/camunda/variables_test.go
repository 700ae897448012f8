package camunda

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVariables(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	vars, err := encodeVariables(map[string]any{
		"name":    "ORDER-001",
		"amount":  5000,
		"rate":    0.25,
		"ok":      true,
		"missing": nil,
		"due":     at,
		"lines":   []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, variableValue{Value: "ORDER-001", Type: "String"}, vars["name"])
	assert.Equal(t, "Long", vars["amount"].Type)
	assert.Equal(t, "Double", vars["rate"].Type)
	assert.Equal(t, "Boolean", vars["ok"].Type)
	assert.Equal(t, "Null", vars["missing"].Type)
	assert.Equal(t, variableValue{Value: "2026-03-01T09:00:00.000+0000", Type: "Date"}, vars["due"])
	assert.Equal(t, "Json", vars["lines"].Type)
	assert.Equal(t, `["a","b"]`, vars["lines"].Value)
}

// Request bodies decoded with UseNumber arrive as json.Number.
func TestEncodeVariables_jsonNumber(t *testing.T) {
	vars, err := encodeVariables(map[string]any{
		"amount": json.Number("5000"),
		"rate":   json.Number("0.25"),
	})
	require.NoError(t, err)

	assert.Equal(t, variableValue{Value: json.Number("5000"), Type: "Long"}, vars["amount"])
	assert.Equal(t, variableValue{Value: json.Number("0.25"), Type: "Double"}, vars["rate"])

	raw, err := json.Marshal(vars["amount"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"value":5000`)
}

func TestEncodeVariables_unencodable(t *testing.T) {
	_, err := encodeVariables(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, "x", decodeValue(variableValue{Value: "x", Type: "String"}))
	assert.Equal(t, map[string]any{"a": 1.0}, decodeValue(variableValue{Value: `{"a":1}`, Type: "Json"}))
	assert.Equal(t, "{broken", decodeValue(variableValue{Value: "{broken", Type: "Json"}))
	assert.Nil(t, decodeValue(variableValue{Type: "Null"}))
}

func TestEngineTime(t *testing.T) {
	var v struct {
		At  engineTime  `json:"at"`
		Opt *engineTime `json:"opt"`
	}
	require.NoError(t, jsonUnmarshal(`{"at":"2026-03-01T09:00:00.000+0100","opt":null}`, &v))
	assert.True(t, v.At.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.Nil(t, v.Opt.ptr())

	require.NoError(t, jsonUnmarshal(`{"at":"2026-03-01T09:00:00Z"}`, &v))
	assert.Equal(t, 9, v.At.UTC().Hour())

	assert.Error(t, jsonUnmarshal(`{"at":"yesterday"}`, &v))
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
