// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueType is the flat type tag of an XML-RPC value. Arrays and
// dictionaries are not described further.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeString
	TypeBool
	TypeInt
	TypeDouble
	TypeDateTime
	TypeData
	TypeArray
	TypeDictionary
)

// String returns the XML-RPC element name used for the type in
// introspection responses.
func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeDateTime:
		return "dateTime.iso8601"
	case TypeData:
		return "base64"
	case TypeArray:
		return "array"
	case TypeDictionary:
		return "struct"
	default:
		return "ValueType(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseValueType maps an XML-RPC type name back to its ValueType.
func ParseValueType(name string) (ValueType, bool) {
	switch name {
	case "i4", "int":
		return TypeInt, true
	case "boolean":
		return TypeBool, true
	case "string":
		return TypeString, true
	case "double":
		return TypeDouble, true
	case "base64":
		return TypeData, true
	case "dateTime.iso8601":
		return TypeDateTime, true
	case "struct":
		return TypeDictionary, true
	case "array":
		return TypeArray, true
	case "null":
		return TypeNull, true
	}
	return TypeNull, false
}

// Value is a single XML-RPC value. The zero Value is null.
type Value struct {
	typ  ValueType
	str  string
	b    bool
	i    int64
	f    float64
	t    time.Time
	data []byte
	arr  []Value
	dict map[string]Value
}

// Valuer is implemented by types that know how to represent themselves as
// an XML-RPC value.
type Valuer interface {
	XMLRPCValue() (Value, error)
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{typ: TypeString, str: s} }
func Bool(b bool) Value { return Value{typ: TypeBool, b: b} }
func Int(i int64) Value { return Value{typ: TypeInt, i: i} }
func Double(f float64) Value { return Value{typ: TypeDouble, f: f} }
func DateTime(t time.Time) Value { return Value{typ: TypeDateTime, t: t} }
func Data(b []byte) Value { return Value{typ: TypeData, data: b} }

// Array builds an array value from the given elements.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{typ: TypeArray, arr: elems}
}

// Dictionary builds a struct value. The map is used as-is.
func Dictionary(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{typ: TypeDictionary, dict: m}
}

// Type returns the value's tag.
func (v Value) Type() ValueType { return v.typ }

func (v Value) IsNull() bool { return v.typ == TypeNull }

func (v Value) AsString() (string, bool) { return v.str, v.typ == TypeString }

func (v Value) AsBool() (bool, bool) { return v.b, v.typ == TypeBool }

func (v Value) AsInt() (int64, bool) { return v.i, v.typ == TypeInt }

func (v Value) AsDouble() (float64, bool) { return v.f, v.typ == TypeDouble }

func (v Value) AsDateTime() (time.Time, bool) { return v.t, v.typ == TypeDateTime }

func (v Value) AsData() ([]byte, bool) { return v.data, v.typ == TypeData }

func (v Value) AsArray() ([]Value, bool) { return v.arr, v.typ == TypeArray }

func (v Value) AsDictionary() (map[string]Value, bool) { return v.dict, v.typ == TypeDictionary }

// Equal reports whether two values carry the same tag and content.
// Dictionaries compare by key set; date-times compare as instants.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeString:
		return v.str == o.str
	case TypeBool:
		return v.b == o.b
	case TypeInt:
		return v.i == o.i
	case TypeDouble:
		return v.f == o.f
	case TypeDateTime:
		return v.t.Equal(o.t)
	case TypeData:
		return bytes.Equal(v.data, o.data)
	case TypeArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case TypeDictionary:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for k, ev := range v.dict {
			ov, ok := o.dict[k]
			if !ok || !ev.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value compactly, for logs and test failures.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.typ {
	case TypeNull:
		sb.WriteString("nil")
	case TypeString:
		sb.WriteString(strconv.Quote(v.str))
	case TypeBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case TypeInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case TypeDouble:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case TypeDateTime:
		sb.WriteString(v.t.UTC().Format(iso8601))
	case TypeData:
		fmt.Fprintf(sb, "<%d bytes>", len(v.data))
	case TypeArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.render(sb)
		}
		sb.WriteByte(']')
	case TypeDictionary:
		sb.WriteByte('{')
		for i, k := range sortedKeys(v.dict) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			v.dict[k].render(sb)
		}
		sb.WriteByte('}')
	}
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
