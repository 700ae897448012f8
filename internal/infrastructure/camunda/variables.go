package camunda

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// variableValue is one entry of the engine's typed variable map,
// {"amount": {"value": 5000, "type": "Long"}}.
type variableValue struct {
	Value     any            `json:"value"`
	Type      string         `json:"type,omitempty"`
	ValueInfo map[string]any `json:"valueInfo,omitempty"`
}

type variableMap map[string]variableValue

// encodeVariables converts plain Go values to typed engine variables.
// Composite values are sent as serialized Json variables.
func encodeVariables(vars map[string]any) (variableMap, error) {
	out := make(variableMap, len(vars))
	for _, name := range sortedKeys(vars) {
		v, err := encodeValue(vars[name])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func encodeValue(v any) (variableValue, error) {
	switch val := v.(type) {
	case nil:
		return variableValue{Type: "Null"}, nil
	case string:
		return variableValue{Value: val, Type: "String"}, nil
	case bool:
		return variableValue{Value: val, Type: "Boolean"}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return variableValue{Value: val, Type: "Long"}, nil
	case float32, float64:
		return variableValue{Value: val, Type: "Double"}, nil
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return variableValue{Value: val, Type: "Long"}, nil
		}
		return variableValue{Value: val, Type: "Double"}, nil
	case time.Time:
		return variableValue{Value: val.Format(engineTimeLayout), Type: "Date"}, nil
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return variableValue{}, err
		}
		return variableValue{
			Value: string(raw),
			Type:  "Json",
			ValueInfo: map[string]any{
				"serializationDataFormat": "application/json",
			},
		}, nil
	}
}

// decodeVariables flattens typed engine variables to plain values. Json
// variables are parsed; everything else keeps its JSON-decoded value.
func decodeVariables(in variableMap) map[string]any {
	out := make(map[string]any, len(in))
	for name, v := range in {
		out[name] = decodeValue(v)
	}
	return out
}

func decodeValue(v variableValue) any {
	if v.Type != "Json" && v.Type != "Object" {
		return v.Value
	}
	raw, ok := v.Value.(string)
	if !ok {
		return v.Value
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	return parsed
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
