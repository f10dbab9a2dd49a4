package coordinator

import (
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// decodeInt decodes a bare MessagePack-encoded integer argument, the
// shape handlers like get_group_info/get_next_group_number take
// (spec.md §6: "one MessagePack-decoded argument").
func decodeInt(args []byte) (int, error) {
	var v any
	if err := wire.Unmarshal(args, &v); err != nil {
		return 0, fmt.Errorf("decode int argument: %w", err)
	}
	return toInt(v)
}

// decodeString decodes a bare MessagePack-encoded string argument.
func decodeString(args []byte) (string, error) {
	var v any
	if err := wire.Unmarshal(args, &v); err != nil {
		return "", fmt.Errorf("decode string argument: %w", err)
	}
	return toString(v)
}

// decodeTuple decodes a MessagePack-encoded positional tuple into its
// member values, the shape multi-argument handlers such as
// couple_groups/break_couple/repair_groups take.
func decodeTuple(args []byte) ([]any, error) {
	var v any
	if err := wire.Unmarshal(args, &v); err != nil {
		return nil, fmt.Errorf("decode tuple argument: %w", err)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a tuple, got %T", v)
	}
	return items, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func toIntSlice(v any) ([]int, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of integers, got %T", v)
	}
	out := make([]int, len(items))
	for i, it := range items {
		n, err := toInt(it)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected a bool, got %T", v)
	}
	return b, nil
}
