package coco

import (
	"encoding/json"
	"time"

	"gorgonia.org/tensor"
)

// Normalize converts the numeric wrapper shapes the upstream pipeline can
// produce into values the JSON encoder handles natively: wide integers
// become int, float32 becomes float64, numeric slices become plain float
// lists, dense tensors become nested lists, and timestamps become ISO-8601
// strings. The set of handled shapes is closed; anything else passes through
// unchanged. Invoked before serialization, never during it.
//
// Arguments:
//   - v: The value to normalize.
//
// Returns:
//   - any: The encoder-native equivalent.
func Normalize(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	case float32:
		return float64(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case time.Time:
		return x.Format("2006-01-02T15:04:05")
	case []float32:
		return normalizeFloat32s(x)
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out
	case []int64:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	case *tensor.Dense:
		return denseToLists(x)
	default:
		return v
	}
}

// normalizeFloat32s widens a float32 coordinate buffer to plain float64.
func normalizeFloat32s(coords []float32) []float64 {
	out := make([]float64, len(coords))
	for i, c := range coords {
		out[i] = float64(c)
	}
	return out
}

// denseToLists converts a dense tensor into nested plain lists following its
// shape, e.g. a [2,3] tensor becomes a list of two 3-element lists.
func denseToLists(t *tensor.Dense) any {
	shape := t.Shape()
	flat := flatNumbers(t)
	if len(shape) == 0 {
		if len(flat) == 1 {
			return flat[0]
		}
		return flat
	}
	list, _ := nest(flat, shape)
	return list
}

// nest groups flat values into nested lists per the remaining shape dims.
func nest(flat []float64, shape []int) (any, []float64) {
	if len(shape) == 1 {
		n := shape[0]
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = flat[i]
		}
		return out, flat[n:]
	}
	out := make([]any, shape[0])
	rest := flat
	for i := 0; i < shape[0]; i++ {
		out[i], rest = nest(rest, shape[1:])
	}
	return out, rest
}

// flatNumbers reads a tensor's backing storage as float64 values.
func flatNumbers(t *tensor.Dense) []float64 {
	switch data := t.Data().(type) {
	case []float64:
		return data
	case []float32:
		return normalizeFloat32s(data)
	case []int:
		out := make([]float64, len(data))
		for i, n := range data {
			out[i] = float64(n)
		}
		return out
	case []int64:
		out := make([]float64, len(data))
		for i, n := range data {
			out[i] = float64(n)
		}
		return out
	case []uint8:
		out := make([]float64, len(data))
		for i, n := range data {
			out[i] = float64(n)
		}
		return out
	case float64:
		return []float64{data}
	case float32:
		return []float64{float64(data)}
	default:
		return nil
	}
}
