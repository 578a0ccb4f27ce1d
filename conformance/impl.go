// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Query-farm/vgi-xmlrpc/wire"
	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
)

// RegisterMethods registers all conformance methods on the route, followed
// by the introspection stage.
func RegisterMethods(route *xmlrpc.Route) {
	// Scalar echo
	xmlrpc.Method1(route, "echo.string", xmlrpc.String, echo[string])
	xmlrpc.Method1(route, "echo.int", xmlrpc.Int64, echo[int64])
	xmlrpc.Method1(route, "echo.double", xmlrpc.Double, echo[float64])
	xmlrpc.Method1(route, "echo.bool", xmlrpc.Bool, echo[bool])
	xmlrpc.Method1(route, "echo.base64", xmlrpc.Base64, echo[[]byte])
	xmlrpc.Method1(route, "echo.dateTime", xmlrpc.DateTime, echo[time.Time])

	// Collections
	xmlrpc.Method1(route, "echo.list", xmlrpc.ArrayOf(xmlrpc.String), echo[[]string])
	xmlrpc.Method1(route, "echo.dict", xmlrpc.StructOf(xmlrpc.Int64), echoDict)
	xmlrpc.Method1(route, "echo.nestedList", xmlrpc.ArrayOf(xmlrpc.ArrayOf(xmlrpc.Int64)), echoNestedList)
	xmlrpc.Method1(route, "echo.array", xmlrpc.Array, echoArray)
	xmlrpc.Method1(route, "echo.struct", xmlrpc.Struct, echo[map[string]wire.Value])

	// Domain types
	xmlrpc.Method1(route, "echo.enum", StatusParam, echo[Status])
	xmlrpc.Method1(route, "echo.point", PointParam, echo[Point])
	xmlrpc.Method1(route, "echo.boundingBox", BoundingBoxParam, echo[BoundingBox])
	xmlrpc.Method1(route, "inspect.point", PointParam, inspectPoint)

	// Multi-param
	xmlrpc.Method2(route, "math.addDoubles", xmlrpc.Double, xmlrpc.Double, addDoubles)
	xmlrpc.Method3(route, "text.concatenate", xmlrpc.String, xmlrpc.String, xmlrpc.String, concatenate)

	// Untyped, with an explicit signature and help
	route.RPC("echo.params", echoParams)
	route.Declare("echo.params")
	route.Declare("echo.params", wire.TypeString)
	route.Help("echo.params", "Returns its parameters as an array.")

	// Error propagation
	xmlrpc.Method2(route, "echo.fault", xmlrpc.Int, xmlrpc.String, echoFault)
	xmlrpc.Method1(route, "echo.error", xmlrpc.String, echoError)

	// Server-side logging
	xmlrpc.Method1(route, "echo.withLog", xmlrpc.String, echoWithLog)

	registerValidator(route)
	route.Introspection()
}

// registerValidator registers the classic validator1 suite.
func registerValidator(route *xmlrpc.Route) {
	xmlrpc.Method1(route, "validator1.arrayOfStructsTest", xmlrpc.ArrayOf(xmlrpc.Struct), arrayOfStructsTest)
	xmlrpc.Method1(route, "validator1.countTheEntities", xmlrpc.String, countTheEntities)
	xmlrpc.Method1(route, "validator1.easyStructTest", xmlrpc.Struct, easyStructTest)
	xmlrpc.Method1(route, "validator1.echoStructTest", xmlrpc.Struct, echo[map[string]wire.Value])
	route.RPC("validator1.manyTypesTest", manyTypesTest)
	route.Declare("validator1.manyTypesTest",
		wire.TypeInt, wire.TypeBool, wire.TypeString, wire.TypeDouble, wire.TypeDateTime, wire.TypeData)
	xmlrpc.Method1(route, "validator1.moderateSizeArrayCheck", xmlrpc.ArrayOf(xmlrpc.String), moderateSizeArrayCheck)
	xmlrpc.Method1(route, "validator1.nestedStructTest", xmlrpc.Struct, nestedStructTest)
	xmlrpc.Method1(route, "validator1.simpleStructReturnTest", xmlrpc.Int64, simpleStructReturnTest)
}

// --- Echo ---

func echo[T any](_ *xmlrpc.CallContext, v T) (T, error) {
	return v, nil
}

func echoDict(_ *xmlrpc.CallContext, m map[string]int64) (map[string]wire.Value, error) {
	out := make(map[string]wire.Value, len(m))
	for k, v := range m {
		out[k] = wire.Int(v)
	}
	return out, nil
}

func echoNestedList(_ *xmlrpc.CallContext, matrix [][]int64) ([]wire.Value, error) {
	rows := make([]wire.Value, len(matrix))
	for i, row := range matrix {
		rows[i], _ = wire.ValueOf(row)
	}
	return rows, nil
}

func echoArray(_ *xmlrpc.CallContext, values []wire.Value) (wire.Value, error) {
	return wire.Array(values...), nil
}

func echoParams(_ *xmlrpc.CallContext, params []wire.Value) (any, error) {
	return params, nil
}

func inspectPoint(_ *xmlrpc.CallContext, p Point) (string, error) {
	return fmt.Sprintf("Point(%g, %g)", p.X, p.Y), nil
}

// --- Multi-param ---

func addDoubles(_ *xmlrpc.CallContext, a, b float64) (float64, error) {
	return a + b, nil
}

func concatenate(_ *xmlrpc.CallContext, prefix, separator, suffix string) (string, error) {
	return prefix + separator + suffix, nil
}

// --- Error propagation ---

func echoFault(_ *xmlrpc.CallContext, code int, reason string) (bool, error) {
	return false, wire.Fault{Code: code, Reason: reason}
}

// echoError returns a plain error; clients only ever see the generic
// call-failed fault.
func echoError(_ *xmlrpc.CallContext, message string) (bool, error) {
	return false, errors.New(message)
}

func echoWithLog(cc *xmlrpc.CallContext, value string) (string, error) {
	cc.Log.WithField("value", value).Info("echo.withLog called")
	return value, nil
}

// --- validator1 ---

func arrayOfStructsTest(_ *xmlrpc.CallContext, structs []map[string]wire.Value) (int64, error) {
	var sum int64
	for _, s := range structs {
		curly, ok := s["curly"].AsInt()
		if !ok {
			return 0, xmlrpc.FaultInvalidParams
		}
		sum += curly
	}
	return sum, nil
}

func countTheEntities(_ *xmlrpc.CallContext, s string) (Entities, error) {
	return Entities{
		LeftAngleBrackets:  strings.Count(s, "<"),
		RightAngleBrackets: strings.Count(s, ">"),
		Ampersands:         strings.Count(s, "&"),
		Apostrophes:        strings.Count(s, "'"),
		Quotes:             strings.Count(s, `"`),
	}, nil
}

// stooges sums the moe, larry and curly members of s.
func stooges(s map[string]wire.Value) (int64, bool) {
	var sum int64
	for _, name := range []string{"moe", "larry", "curly"} {
		v, ok := s[name].AsInt()
		if !ok {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

func easyStructTest(_ *xmlrpc.CallContext, s map[string]wire.Value) (int64, error) {
	sum, ok := stooges(s)
	if !ok {
		return 0, xmlrpc.FaultInvalidParams
	}
	return sum, nil
}

func manyTypesTest(_ *xmlrpc.CallContext, params []wire.Value) (any, error) {
	if len(params) != 6 {
		return nil, xmlrpc.FaultInvalidParams
	}
	return params, nil
}

func moderateSizeArrayCheck(_ *xmlrpc.CallContext, values []string) (string, error) {
	if len(values) == 0 {
		return "", xmlrpc.FaultInvalidParams
	}
	return values[0] + values[len(values)-1], nil
}

// nestedStructTest sums the stooges of calendar["2000"]["04"]["01"].
func nestedStructTest(_ *xmlrpc.CallContext, calendar map[string]wire.Value) (int64, error) {
	day := wire.Dictionary(calendar)
	for _, key := range []string{"2000", "04", "01"} {
		m, ok := day.AsDictionary()
		if !ok {
			return 0, xmlrpc.FaultInvalidParams
		}
		day = m[key]
	}
	m, ok := day.AsDictionary()
	if !ok {
		return 0, xmlrpc.FaultInvalidParams
	}
	sum, ok := stooges(m)
	if !ok {
		return 0, xmlrpc.FaultInvalidParams
	}
	return sum, nil
}

func simpleStructReturnTest(_ *xmlrpc.CallContext, n int64) (map[string]wire.Value, error) {
	return map[string]wire.Value{
		"times10":   wire.Int(n * 10),
		"times100":  wire.Int(n * 100),
		"times1000": wire.Int(n * 1000),
	}, nil
}
