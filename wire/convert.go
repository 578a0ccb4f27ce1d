package wire

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// ValueOf converts a native Go value into a Value. The set of accepted
// types is closed; anything else must implement Valuer. NaN and infinite
// doubles have no XML-RPC representation and are rejected, including
// inside arrays and structs.
func ValueOf(v any) (Value, error) {
	out, err := valueOf(v)
	if err != nil {
		return Value{}, err
	}
	if err := checkFinite(out); err != nil {
		return Value{}, err
	}
	return out, nil
}

func valueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Valuer:
		return x.XMLRPCValue()
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, errors.Errorf("wire: %d overflows an XML-RPC int", x)
		}
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, errors.Errorf("wire: %d overflows an XML-RPC int", x)
		}
		return Int(int64(x)), nil
	case float32:
		return Double(float64(x)), nil
	case float64:
		return Double(x), nil
	case time.Time:
		return DateTime(x), nil
	case []byte:
		return Data(x), nil
	case []Value:
		return Array(x...), nil
	case []string:
		return arrayOf(x, String), nil
	case []int:
		return arrayOf(x, func(i int) Value { return Int(int64(i)) }), nil
	case []int64:
		return arrayOf(x, Int), nil
	case []float64:
		return arrayOf(x, Double), nil
	case []bool:
		return arrayOf(x, Bool), nil
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			ev, err := valueOf(e)
			if err != nil {
				return Value{}, errors.Wrapf(err, "element %d", i)
			}
			elems[i] = ev
		}
		return Array(elems...), nil
	case map[string]Value:
		return Dictionary(x), nil
	case map[string]string:
		return dictionaryOf(x, String), nil
	case map[string]int:
		return dictionaryOf(x, func(i int) Value { return Int(int64(i)) }), nil
	case map[string]any:
		members := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := valueOf(e)
			if err != nil {
				return Value{}, errors.Wrapf(err, "member %q", k)
			}
			members[k] = ev
		}
		return Dictionary(members), nil
	}
	return Value{}, errors.Errorf("wire: cannot encode %T as an XML-RPC value", v)
}

func checkFinite(v Value) error {
	switch v.typ {
	case TypeDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return errors.Errorf("wire: %v is not a valid XML-RPC double", v.f)
		}
	case TypeArray:
		for i, e := range v.arr {
			if err := checkFinite(e); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
	case TypeDictionary:
		for k, m := range v.dict {
			if err := checkFinite(m); err != nil {
				return errors.Wrapf(err, "member %q", k)
			}
		}
	}
	return nil
}

func arrayOf[T any](xs []T, conv func(T) Value) Value {
	elems := make([]Value, len(xs))
	for i, x := range xs {
		elems[i] = conv(x)
	}
	return Array(elems...)
}

func dictionaryOf[T any](m map[string]T, conv func(T) Value) Value {
	members := make(map[string]Value, len(m))
	for k, x := range m {
		members[k] = conv(x)
	}
	return Dictionary(members)
}
