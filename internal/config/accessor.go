package config

import "fmt"

// GetBool returns the effective value of key as a bool. Only a stored bool
// qualifies; numbers and strings are a type mismatch.
func (s *Store) GetBool(key string) (bool, error) {
	v, ok := s.GetItem(key)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrSettingNotFound, key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Key: key, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetString returns the effective value of key as a string.
func (s *Store) GetString(key string) (string, error) {
	v, ok := s.GetItem(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSettingNotFound, key)
	}
	str, ok := v.(string)
	if !ok {
		return "", &TypeError{Key: key, Expected: "string", Actual: typeName(v)}
	}
	return str, nil
}

// GetFloat returns the effective value of key as a float64. Integer values
// are converted.
func (s *Store) GetFloat(key string) (float64, error) {
	v, ok := s.GetItem(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSettingNotFound, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, &TypeError{Key: key, Expected: "number", Actual: typeName(v)}
	}
}

// typeName returns a human-readable type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
