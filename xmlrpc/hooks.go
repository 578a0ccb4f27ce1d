// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"context"
	"net/http"
)

// DispatchHook provides observability callpoints around XML-RPC dispatch.
// Implementations must be safe for concurrent use.
type DispatchHook interface {
	OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken)
	OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, result DispatchResult)
}

// HookToken is an opaque value returned by OnDispatchStart and passed back to
// OnDispatchEnd. Only meaningful to the DispatchHook that created it.
type HookToken interface{}

// DispatchInfo carries call metadata passed to hooks.
type DispatchInfo struct {
	Method            string            // XML-RPC method name
	Route             string            // Serving route name
	RequestID         string            // Request identifier
	Reserved          bool              // Whether Method is an introspection method
	TransportMetadata map[string]string // remote_addr, user_agent, traceparent, tracestate
}

// DispatchResult describes how a dispatched call ended.
type DispatchResult struct {
	Outcome    OutcomeKind
	FaultCode  int   // Non-zero when the response was a fault
	HTTPStatus int   // Status written to the client
	Err        error // Fault or transport error, nil on success
}

// transportMetadata collects the HTTP-level fields exposed to hooks.
func transportMetadata(r *http.Request) map[string]string {
	md := map[string]string{"remote_addr": r.RemoteAddr}
	if v := r.UserAgent(); v != "" {
		md["user_agent"] = v
	}
	if v := r.Header.Get("traceparent"); v != "" {
		md["traceparent"] = v
	}
	if v := r.Header.Get("tracestate"); v != "" {
		md["tracestate"] = v
	}
	return md
}
