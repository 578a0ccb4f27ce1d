// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package benchmark registers the fixture methods used to compare XML-RPC
// server implementations.
package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Query-farm/vgi-xmlrpc/wire"
	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
)

// RegisterMethods registers the benchmark fixture methods on the route.
func RegisterMethods(route *xmlrpc.Route) {
	xmlrpc.Method0(route, "bench.noop", noop)
	xmlrpc.Method2(route, "bench.add", xmlrpc.Double, xmlrpc.Double, add)
	xmlrpc.Method1(route, "bench.greet", xmlrpc.String, greet)
	xmlrpc.Method3(route, "bench.roundtrip_types",
		xmlrpc.String, xmlrpc.StructOf(xmlrpc.Int64), xmlrpc.ArrayOf(xmlrpc.Int64),
		roundtripTypes)
	xmlrpc.Method1(route, "bench.generate", xmlrpc.Int, generate)
	xmlrpc.Method2(route, "bench.transform", xmlrpc.Double, xmlrpc.ArrayOf(xmlrpc.Double), transform)
}

func noop(_ *xmlrpc.CallContext) (bool, error) {
	return true, nil
}

func add(_ *xmlrpc.CallContext, a, b float64) (float64, error) {
	return a + b, nil
}

func greet(_ *xmlrpc.CallContext, name string) (string, error) {
	return "Hello, " + name + "!", nil
}

// roundtripTypes renders its arguments as "color:{'k': v}:[t, ...]" with
// sorted keys and tags.
func roundtripTypes(_ *xmlrpc.CallContext, color string, mapping map[string]int64, tags []int64) (string, error) {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mappingParts []string
	for _, k := range keys {
		mappingParts = append(mappingParts, fmt.Sprintf("'%s': %d", k, mapping[k]))
	}

	sortedTags := make([]int64, len(tags))
	copy(sortedTags, tags)
	sort.Slice(sortedTags, func(i, j int) bool { return sortedTags[i] < sortedTags[j] })

	var tagParts []string
	for _, t := range sortedTags {
		tagParts = append(tagParts, fmt.Sprintf("%d", t))
	}

	return fmt.Sprintf("%s:{%s}:[%s]", color, strings.Join(mappingParts, ", "), strings.Join(tagParts, ", ")), nil
}

// generate returns count structs {i, value} where value = i * 10.
func generate(_ *xmlrpc.CallContext, count int) ([]wire.Value, error) {
	if count < 0 {
		return nil, wire.Fault{Code: 400, Reason: "count must not be negative"}
	}
	rows := make([]wire.Value, count)
	for i := range rows {
		rows[i] = wire.Dictionary(map[string]wire.Value{
			"i":     wire.Int(int64(i)),
			"value": wire.Int(int64(i) * 10),
		})
	}
	return rows, nil
}

// transform scales every value by factor.
func transform(_ *xmlrpc.CallContext, factor float64, values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out, nil
}
