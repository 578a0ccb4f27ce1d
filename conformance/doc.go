// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package conformance provides test fixtures for the XML-RPC conformance
// suite. It registers methods that exercise every value type, typed
// positional decoding, fault and error propagation, untyped handlers with
// declared signatures, and the classic validator1 interoperability tests.
//
// The only entry point intended for external use is [RegisterMethods],
// which registers all conformance methods on an [xmlrpc.Route]. The
// domain types [Status], [Point] and [BoundingBox] are exported because
// they serve as examples of [wire.Valuer] implementations paired with a
// custom [xmlrpc.Param].
package conformance
