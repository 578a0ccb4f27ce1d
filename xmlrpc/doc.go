// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package xmlrpc serves XML-RPC method calls over HTTP.
//
// A [Route] owns a [Registry] of method names, parameter signatures and
// help text, and an ordered list of [Stage] values. Each inbound POST with
// a text/xml body is parsed once into a [wire.Call] and offered to the
// stages in turn; the first stage that does not decline produces the
// response.
//
// # Stages
//
// A stage returns one of three outcomes:
//
//   - [Handled]: the stage produced an XML-RPC response (a value or a
//     fault). The response is written with HTTP 200.
//   - [Declined]: the call is not for this stage; the next one is tried.
//   - [Failed]: a transport-level failure. A [*StatusError] selects the
//     HTTP status; any other error is a 500.
//
// [Sequence] composes stages with exactly these semantics. [RateLimit] is
// a stage that declines while tokens remain, so it goes first:
//
//	route.Use(xmlrpc.RateLimit(100, 20))
//
// # Typed methods
//
// [Method0] through [Method3] bind a handler with statically typed
// arguments. Each argument is described by a [Param], a pair of the
// expected [wire.ValueType] and a decode function; decoding is strict, so
// an int never satisfies a double parameter. The signature is recorded in
// the route's registry at declaration time:
//
//	route := xmlrpc.NewRoute()
//	xmlrpc.Method2(route, "add", xmlrpc.Int, xmlrpc.Int,
//		func(_ *xmlrpc.CallContext, a, b int) (int, error) {
//			return a + b, nil
//		})
//	route.Introspection()
//	http.Handle("/RPC2", route)
//
// A call with the wrong number of arguments, or an argument of the wrong
// type, is answered with fault 400 "Invalid parameters". Handlers signal
// a protocol failure by returning a [wire.Fault]; any other error becomes
// the opaque fault 500 "Call to XML-RPC function failed." and is logged.
//
// # Introspection
//
// [Route.Introspection] answers system.listMethods,
// system.methodSignature, system.methodHelp, system.methodExist and
// getCapabilities from the registry. These five names are always known.
//
// # Describe surfaces
//
// A GET on the route renders an HTML reference of every known method.
// With ?describe, or Accept: application/vnd.apache.arrow.stream, the
// registry is returned as a single Arrow IPC record batch instead; see
// [ReadDescribe].
package xmlrpc
