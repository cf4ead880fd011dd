package tools

import (
	"fmt"

	mcperrors "github.com/palisade-labs/telescope-mcp-server/internal/errors"
)

// Argument extraction helpers. JSON numbers arrive as float64, so the
// numeric helpers accept both float64 and int. Optional arguments resolve to
// the caller-supplied default when absent.

// GetStringParam safely gets a string parameter from arguments
func GetStringParam(arguments map[string]interface{}, key string, required bool) (string, error) {
	val, exists := arguments[key]
	if !exists {
		if required {
			return "", mcperrors.NewMissingParameter(key)
		}
		return "", nil
	}
	str, ok := val.(string)
	if !ok {
		return "", mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must be a string", key))
	}
	return str, nil
}

// GetIntParam gets an integer parameter, returning def when absent.
func GetIntParam(arguments map[string]interface{}, key string, def int) (int, error) {
	val, exists := arguments[key]
	if !exists {
		return def, nil
	}
	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must be a number", key))
	}
}

// GetFloatParam gets a float parameter, returning def when absent.
func GetFloatParam(arguments map[string]interface{}, key string, def float64) (float64, error) {
	val, exists := arguments[key]
	if !exists {
		return def, nil
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must be a number", key))
	}
}

// GetBoolParam gets a boolean parameter, returning def when absent.
func GetBoolParam(arguments map[string]interface{}, key string, def bool) (bool, error) {
	val, exists := arguments[key]
	if !exists {
		return def, nil
	}
	boolVal, ok := val.(bool)
	if !ok {
		return def, mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must be a boolean", key))
	}
	return boolVal, nil
}

// GetLimitParam gets a listing limit. An absent limit resolves to def; a
// supplied non-positive limit is the caller's error and is rejected before
// any query runs; limits above max clamp to max.
func GetLimitParam(arguments map[string]interface{}, key string, def, max int) (int, error) {
	limit, err := GetIntParam(arguments, key, def)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must be positive, got %d", key, limit))
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}

// GetHoursParam gets a non-negative time-window parameter in hours.
func GetHoursParam(arguments map[string]interface{}, key string, def int) (int, error) {
	hours, err := GetIntParam(arguments, key, def)
	if err != nil {
		return 0, err
	}
	if hours < 0 {
		return 0, mcperrors.NewInvalidArgument(fmt.Sprintf("parameter %s must not be negative, got %d", key, hours))
	}
	return hours, nil
}
