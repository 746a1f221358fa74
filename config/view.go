package config

import (
	"fmt"
	"math"
)

// View is a per-scene read path: overrides first, then the shared store
type View struct {
	base      *Store
	overrides map[string]any
}

// Lookup returns the effective raw value for key
func (v *View) Lookup(key string) (any, bool) {
	if val, ok := v.overrides[key]; ok {
		return val, true
	}
	if v.base == nil {
		return nil, false
	}
	return v.base.Lookup(key)
}

// Int returns key as an int, or def when missing or not integral
func (v *View) Int(key string, def int) int {
	raw, ok := v.Lookup(key)
	if !ok {
		return def
	}
	n, err := toInt(raw)
	if err != nil {
		return def
	}
	return n
}

// Float returns key as a float64, or def
func (v *View) Float(key string, def float64) float64 {
	raw, ok := v.Lookup(key)
	if !ok {
		return def
	}
	switch n := raw.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return def
	}
}

// String returns key as a string, or def
func (v *View) String(key string, def string) string {
	if raw, ok := v.Lookup(key); ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns key as a bool, or def
func (v *View) Bool(key string, def bool) bool {
	if raw, ok := v.Lookup(key); ok {
		if b, ok := raw.(bool); ok {
			return b
		}
	}
	return def
}

func toInt(raw any) (int, error) {
	switch n := raw.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%g is not integral", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%T is not a number", raw)
	}
}
