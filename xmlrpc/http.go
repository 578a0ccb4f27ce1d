// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

const (
	xmlContentType   = "text/xml; charset=utf-8"
	arrowContentType = "application/vnd.apache.arrow.stream"
	htmlContentType  = "text/html; charset=utf-8"
	requestIDHeader  = "X-Request-Id"
)

// Route serves XML-RPC calls over HTTP. It owns one [Registry]; routes
// never share registries.
type Route struct {
	name         string
	protocolName string
	registry     *Registry
	log          *logrus.Logger
	maxBodySize  int64
	pages        bool

	mu               sync.RWMutex
	stages           []Stage
	hook             DispatchHook
	compressionLevel int
}

// Option configures a [Route].
type Option func(*Route)

// WithName sets the route name used in logs, hooks and describe output.
func WithName(name string) Option {
	return func(r *Route) { r.name = name }
}

// WithProtocolName sets the service title shown by the describe surfaces.
func WithProtocolName(name string) Option {
	return func(r *Route) { r.protocolName = name }
}

// WithLogger sets the logger. Defaults to logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(r *Route) { r.log = l }
}

// WithMaxBodySize caps the decoded request body. Larger bodies are
// rejected with 413.
func WithMaxBodySize(n int64) Option {
	return func(r *Route) { r.maxBodySize = n }
}

// WithPages enables or disables the HTML page served on GET.
func WithPages(enabled bool) Option {
	return func(r *Route) { r.pages = enabled }
}

// NewRoute creates a route with an empty registry and no stages.
func NewRoute(opts ...Option) *Route {
	r := &Route{
		name:             "xmlrpc",
		protocolName:     "XML-RPC",
		registry:         NewRegistry(),
		log:              logrus.StandardLogger(),
		maxBodySize:      DefaultMaxBodySize,
		pages:            true,
		compressionLevel: gzip.DefaultCompression,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the route name.
func (r *Route) Name() string { return r.name }

// Registry returns the route's method registry.
func (r *Route) Registry() *Registry { return r.registry }

// Use appends stages to the pipeline.
func (r *Route) Use(stages ...Stage) *Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stages...)
	return r
}

// RPC registers an untyped handler for name.
func (r *Route) RPC(name string, h Handler) *Route {
	r.registry.Register(name)
	return r.Use(SynchronousCall(name, h))
}

// Call appends a handler that receives every call reaching it.
func (r *Route) Call(h Handler) *Route {
	return r.Use(SynchronousCall("", h))
}

// Help sets the help text reported by system.methodHelp for name.
func (r *Route) Help(name, text string) *Route {
	r.registry.AddHelp(name, text)
	return r
}

// Declare records a signature for name without binding a handler.
func (r *Route) Declare(name string, types ...wire.ValueType) *Route {
	r.registry.AddSignature(name, types)
	return r
}

// Introspection appends the introspection stage.
func (r *Route) Introspection() *Route {
	return r.Use(Introspection())
}

// SetDispatchHook registers a hook that is called around each dispatched call.
func (r *Route) SetDispatchHook(hook DispatchHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

// SetCompressionLevel sets the gzip level for responses. 0 disables
// response compression.
func (r *Route) SetCompressionLevel(level int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compressionLevel = level
}

// ServeHTTP implements http.Handler. POST requests are dispatched; GET
// requests get the describe surfaces; anything else is 405.
func (r *Route) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		r.dispatch(w, req, nil)
	case http.MethodGet:
		r.handleGet(w, req)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Middleware serves XML-RPC calls and hands every other request, or a
// request no stage accepted that is not an XML-RPC call, to next.
func (r *Route) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			next.ServeHTTP(w, req)
			return
		}
		r.dispatch(w, req, next)
	})
}

func (r *Route) dispatch(w http.ResponseWriter, req *http.Request, next http.Handler) {
	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	fields := logrus.Fields{"route": r.name, "request_id": requestID}
	req, serr := parseRequest(req, r.maxBodySize)
	if serr != nil {
		r.log.WithFields(fields).WithField("status", serr.Status).Warn(serr.Message)
		http.Error(w, serr.Message, serr.Status)
		return
	}

	pb := bodyFrom(req.Context())
	if pb.call != nil {
		fields["xmlrpc"] = pb.call.MethodName
	}
	log := r.log.WithFields(fields)
	if pb.err != nil {
		log.WithError(pb.err).Warn("could not parse XML-RPC call")
	}

	cc := &CallContext{
		Ctx:        req.Context(),
		HTTPMethod: req.Method,
		XML:        pb.xml,
		Call:       pb.call,
		Registry:   r.registry,
		Log:        log,
		RequestID:  requestID,
		Route:      r.name,
	}

	r.mu.RLock()
	stages := r.stages
	hook := r.hook
	level := r.compressionLevel
	r.mu.RUnlock()

	var (
		info       DispatchInfo
		token      HookToken
		hookActive bool
	)
	if hook != nil && cc.Call != nil {
		info = DispatchInfo{
			Method:            cc.Call.MethodName,
			Route:             r.name,
			RequestID:         requestID,
			Reserved:          IsReserved(cc.Call.MethodName),
			TransportMetadata: transportMetadata(req),
		}
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					log.WithField("panic", rv).Error("dispatch hook start panic")
				}
			}()
			var hookCtx context.Context
			hookCtx, token = hook.OnDispatchStart(cc.Ctx, info)
			if hookCtx != nil {
				cc.Ctx = hookCtx
			}
			hookActive = true
		}()
	}

	out := Sequence(stages...).Serve(cc)
	result := r.finish(w, req, cc, out, next, level)

	if hookActive {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					log.WithField("panic", rv).Error("dispatch hook end panic")
				}
			}()
			hook.OnDispatchEnd(cc.Ctx, token, info, result)
		}()
	}
}

// finish writes the response for out and reports what was written.
func (r *Route) finish(w http.ResponseWriter, req *http.Request, cc *CallContext, out Outcome, next http.Handler, level int) DispatchResult {
	if err := req.Context().Err(); err != nil {
		cc.logger().WithError(err).Debug("request cancelled before a response was written")
		return DispatchResult{Outcome: out.Kind(), Err: err}
	}

	switch out.Kind() {
	case OutcomeHandled:
		resp, _ := out.Response()
		writeBody(w, req, http.StatusOK, xmlContentType, resp.XML(), level)
		result := DispatchResult{Outcome: OutcomeHandled, HTTPStatus: http.StatusOK}
		if f, ok := resp.Fault(); ok {
			result.FaultCode = f.Code
			result.Err = f
		}
		return result

	case OutcomeFailed:
		status, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		var se *StatusError
		if errors.As(out.Err(), &se) {
			status = se.Status
			if se.Message != "" {
				msg = se.Message
			}
		} else {
			cc.logger().WithError(out.Err()).Error("XML-RPC stage failed")
		}
		http.Error(w, msg, status)
		return DispatchResult{Outcome: OutcomeFailed, HTTPStatus: status, Err: out.Err()}
	}

	if cc.Call != nil {
		cc.logger().Warn("unprocessed XML-RPC request after introspection")
		f := faultNotFound(cc.Call.MethodName)
		writeBody(w, req, http.StatusOK, xmlContentType, faultResponse(f).XML(), level)
		return DispatchResult{Outcome: OutcomeDeclined, FaultCode: f.Code, HTTPStatus: http.StatusOK, Err: f}
	}
	if cc.XML {
		http.Error(w, "invalid XML-RPC call", http.StatusBadRequest)
		return DispatchResult{Outcome: OutcomeDeclined, HTTPStatus: http.StatusBadRequest}
	}
	if next != nil {
		cc.logger().Info("passing non XML-RPC request to next handler")
		next.ServeHTTP(w, req)
		return DispatchResult{Outcome: OutcomeDeclined}
	}
	http.NotFound(w, req)
	return DispatchResult{Outcome: OutcomeDeclined, HTTPStatus: http.StatusNotFound}
}
