// Package txnops applies the fixed transaction micro-language ("append",
// "r") used by both the single-node txn engine and the CAS-txn engine
// against a mapping int64 → ordered sequence<int64>. The two engines
// differ only in where that mapping lives (process-local vs. a remote
// register) and how the result is committed, not in op semantics, so the
// interpreter is shared.
package txnops

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Op is one decoded transaction operation, e.g. ["append", 1, 100] or
// ["r", 1].
type Op = []interface{}

// Apply runs ops against kv in order, mutating it in place for "append"
// and leaving it untouched for "r", and returns the ops as they should
// appear in a txn_ok reply.
func Apply(kv map[int64][]int64, ops []Op) ([]Op, error) {
	results := make([]Op, 0, len(ops))
	for _, op := range ops {
		result, err := applyOne(kv, op)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func applyOne(kv map[int64][]int64, op Op) (Op, error) {
	if len(op) < 2 {
		return nil, fmt.Errorf("txnops: malformed op %#v", op)
	}
	name, ok := op[0].(string)
	if !ok {
		return nil, fmt.Errorf("txnops: op name not a string: %#v", op[0])
	}
	key, err := AsInt64(op[1])
	if err != nil {
		return nil, fmt.Errorf("txnops: op key: %w", err)
	}

	switch name {
	case "append":
		if len(op) < 3 {
			return nil, fmt.Errorf("txnops: append missing value: %#v", op)
		}
		value, err := AsInt64(op[2])
		if err != nil {
			return nil, fmt.Errorf("txnops: append value: %w", err)
		}
		kv[key] = append(kv[key], value)
		return Op{"append", key, value}, nil

	case "r":
		if existing, ok := kv[key]; ok {
			return Op{"r", key, append([]int64(nil), existing...)}, nil
		}
		return Op{"r", key, nil}, nil

	default:
		return nil, fmt.Errorf("txnops: unknown op %q", name)
	}
}

// AsInt64 converts a decoded JSON number (float64) or an already-typed
// int64 to int64.
func AsInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("txnops: not a number: %#v", v)
	}
}

// DeepCopy returns a copy of m whose slices do not alias m's.
func DeepCopy(m map[int64][]int64) map[int64][]int64 {
	out := make(map[int64][]int64, len(m))
	for k, v := range m {
		out[k] = append([]int64(nil), v...)
	}
	return out
}

// EncodeRegister marshals the register's in-memory int64-keyed map into
// the decimal-string-keyed JSON object the wire format requires (JSON
// object keys are always strings).
func EncodeRegister(m map[int64][]int64) (json.RawMessage, error) {
	wire := make(map[string][]int64, len(m))
	for k, v := range m {
		wire[strconv.FormatInt(k, 10)] = v
	}
	return json.Marshal(wire)
}

// DecodeRegister unmarshals a register value off the wire back into an
// int64-keyed map. An empty or null raw value decodes to an empty map.
func DecodeRegister(raw json.RawMessage) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var wire map[string][]int64
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("txnops: decode register: %w", err)
	}
	for k, v := range wire {
		key, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("txnops: register key %q: %w", k, err)
		}
		out[key] = v
	}
	return out, nil
}
