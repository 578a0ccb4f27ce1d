// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// CallContext provides request-scoped information and logging to stages
// and method handlers.
type CallContext struct {
	// Ctx is the request-scoped context, carrying cancellation and deadlines.
	Ctx context.Context
	// HTTPMethod is the method of the HTTP request that delivered the call.
	HTTPMethod string
	// XML reports whether the request declared a text/xml body.
	XML bool
	// Call is the parsed method call, or nil when the body was absent or
	// did not parse.
	Call *wire.Call
	// Registry is the method registry of the route serving the request.
	Registry *Registry
	// Log is the request logger, carrying route, request_id and xmlrpc fields.
	Log *logrus.Entry
	// RequestID identifies the request; echoed in the X-Request-Id header.
	RequestID string
	// Route is the name of the serving route.
	Route string
}

// MethodName returns the name of the parsed call, or "".
func (cc *CallContext) MethodName() string {
	if cc.Call == nil {
		return ""
	}
	return cc.Call.MethodName
}

// Params returns the parameters of the parsed call.
func (cc *CallContext) Params() []wire.Value {
	if cc.Call == nil {
		return nil
	}
	return cc.Call.Params
}

func (cc *CallContext) logger() *logrus.Entry {
	if cc.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return cc.Log
}

// pending checks the preconditions shared by every call-consuming stage.
// It returns the call when the stage should proceed, or the outcome to
// return otherwise.
func (cc *CallContext) pending() (*wire.Call, Outcome, bool) {
	if cc.HTTPMethod != http.MethodPost {
		return nil, Declined(), false
	}
	if cc.Call == nil {
		if cc.XML {
			return nil, Failed(&StatusError{Status: http.StatusBadRequest, Message: "invalid XML-RPC call"}), false
		}
		return nil, Declined(), false
	}
	return cc.Call, Outcome{}, true
}
