package dsl

import (
	"fmt"
	"math"

	"github.com/shllg/mcp-agents/internal/constants"
)

// normalizeDefault checks a YAML-decoded default against the declared type and
// converts it to the value JSON Schema should advertise.
func normalizeDefault(typ string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch typ {
	case constants.PropertyString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case constants.PropertyBoolean:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case constants.PropertyInteger:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case uint64:
			if v <= math.MaxInt64 {
				return int64(v), nil
			}
		case float64:
			if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt64 {
				return int64(v), nil
			}
		}
	case constants.PropertyNumber:
		switch v := value.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case uint64:
			return float64(v), nil
		case float64:
			return v, nil
		}
	}
	return nil, fmt.Errorf("%v (%T) is not a valid %s", value, value, typ)
}
