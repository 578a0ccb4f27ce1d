// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package wire reads and writes XML-RPC documents.
//
// A [Value] is a closed tagged union over the nine XML-RPC value kinds
// (see [ValueType]). [ParseCall] and [ParseResponse] decode inbound
// documents; [EncodeCall] and [Response.XML] produce them. Handler results
// are converted with [ValueOf], which accepts a fixed set of Go types plus
// anything implementing [Valuer].
//
// Untyped values (<value>text</value>) decode as strings. Integers wider
// than 32 bits are written as <i8>. Struct members are written in sorted key
// order so output is deterministic.
package wire
