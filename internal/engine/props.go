package engine

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Props helpers read loosely typed scene file values. YAML numbers arrive as
// int or float64 depending on how they were written.

func toFloat(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	}
	return 0, false
}

func PropFloat(props map[string]any, key string, def float32) float32 {
	if f, ok := toFloat(props[key]); ok {
		return f
	}
	return def
}

func PropInt(props map[string]any, key string, def int) int {
	if f, ok := toFloat(props[key]); ok {
		return int(f)
	}
	return def
}

func PropString(props map[string]any, key string, def string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return def
}

func PropBool(props map[string]any, key string, def bool) bool {
	if b, ok := props[key].(bool); ok {
		return b
	}
	return def
}

// PropVector3 reads a three element list.
func PropVector3(props map[string]any, key string, def rl.Vector3) (rl.Vector3, error) {
	raw, ok := props[key]
	if !ok {
		return def, nil
	}
	list, ok := raw.([]any)
	if !ok || len(list) != 3 {
		return def, fmt.Errorf("%s: want a list of 3 numbers, got %v", key, raw)
	}
	var out [3]float32
	for i, v := range list {
		f, ok := toFloat(v)
		if !ok {
			return def, fmt.Errorf("%s[%d]: not a number: %v", key, i, v)
		}
		out[i] = f
	}
	return rl.Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// PropColor reads a list of 3 or 4 bytes.
func PropColor(props map[string]any, key string, def rl.Color) (rl.Color, error) {
	raw, ok := props[key]
	if !ok {
		return def, nil
	}
	list, ok := raw.([]any)
	if !ok || (len(list) != 3 && len(list) != 4) {
		return def, fmt.Errorf("%s: want a list of 3 or 4 numbers, got %v", key, raw)
	}
	c := [4]uint8{0, 0, 0, 255}
	for i, v := range list {
		f, ok := toFloat(v)
		if !ok || f < 0 || f > 255 {
			return def, fmt.Errorf("%s[%d]: not a byte: %v", key, i, v)
		}
		c[i] = uint8(f)
	}
	return rl.NewColor(c[0], c[1], c[2], c[3]), nil
}
