// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"time"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// Param describes one positional argument of a typed method: the value
// type it accepts and how to decode it. A value whose type differs from
// Type never reaches Decode.
type Param[T any] struct {
	Type   wire.ValueType
	Decode func(wire.Value) (T, bool)
}

func (p Param[T]) decode(v wire.Value) (T, bool) {
	if v.Type() != p.Type || p.Decode == nil {
		var zero T
		return zero, false
	}
	return p.Decode(v)
}

// Built-in parameter kinds.
var (
	String   = Param[string]{Type: wire.TypeString, Decode: wire.Value.AsString}
	Int64    = Param[int64]{Type: wire.TypeInt, Decode: wire.Value.AsInt}
	Double   = Param[float64]{Type: wire.TypeDouble, Decode: wire.Value.AsDouble}
	Bool     = Param[bool]{Type: wire.TypeBool, Decode: wire.Value.AsBool}
	DateTime = Param[time.Time]{Type: wire.TypeDateTime, Decode: wire.Value.AsDateTime}
	Base64   = Param[[]byte]{Type: wire.TypeData, Decode: wire.Value.AsData}
	Array    = Param[[]wire.Value]{Type: wire.TypeArray, Decode: wire.Value.AsArray}
	Struct   = Param[map[string]wire.Value]{Type: wire.TypeDictionary, Decode: wire.Value.AsDictionary}

	Int = Param[int]{Type: wire.TypeInt, Decode: func(v wire.Value) (int, bool) {
		i, ok := v.AsInt()
		if !ok || int64(int(i)) != i {
			return 0, false
		}
		return int(i), true
	}}
)

// ArrayOf accepts an array whose every element decodes with elem.
func ArrayOf[T any](elem Param[T]) Param[[]T] {
	return Param[[]T]{
		Type: wire.TypeArray,
		Decode: func(v wire.Value) ([]T, bool) {
			elems, ok := v.AsArray()
			if !ok {
				return nil, false
			}
			out := make([]T, len(elems))
			for i, e := range elems {
				if out[i], ok = elem.decode(e); !ok {
					return nil, false
				}
			}
			return out, true
		},
	}
}

// StructOf accepts a struct whose every member decodes with member.
func StructOf[T any](member Param[T]) Param[map[string]T] {
	return Param[map[string]T]{
		Type: wire.TypeDictionary,
		Decode: func(v wire.Value) (map[string]T, bool) {
			members, ok := v.AsDictionary()
			if !ok {
				return nil, false
			}
			out := make(map[string]T, len(members))
			for k, m := range members {
				d, ok := member.decode(m)
				if !ok {
					return nil, false
				}
				out[k] = d
			}
			return out, true
		},
	}
}
