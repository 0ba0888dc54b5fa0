package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/virtualstore/salesagent/pkg/database"
)

// Argument extraction. The model sends JSON, so numbers arrive as
// float64 (or json.Number when the decoder is configured that way) and
// everything must be checked before it reaches a query.

func optionalString(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

func requiredString(args map[string]any, key string) (string, error) {
	s, err := optionalString(args, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optionalFloat(args map[string]any, key string) (*float64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}

func optionalInt(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), true, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("not a number: %T", raw)
	}
}

// orderLines extracts the items array of an orders.create call.
func orderLines(args map[string]any) ([]database.OrderLine, error) {
	raw, ok := args["items"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("items is required")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("items must be an array")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("items must not be empty")
	}

	lines := make([]database.OrderLine, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("items[%d] must be an object", i)
		}
		name, err := requiredString(obj, "product_name")
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %v", i, err)
		}
		qty, set, err := optionalInt(obj, "quantity")
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %v", i, err)
		}
		if !set {
			return nil, fmt.Errorf("items[%d]: quantity is required", i)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		lines = append(lines, database.OrderLine{ProductName: name, Quantity: qty})
	}
	return lines, nil
}
