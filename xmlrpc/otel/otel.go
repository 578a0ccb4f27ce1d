// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package xmlotel provides OpenTelemetry instrumentation for XML-RPC routes.
// It implements the [xmlrpc.DispatchHook] interface to add distributed
// tracing and metrics to call dispatch.
//
// Usage:
//
//	route := xmlrpc.NewRoute()
//	// ... register methods ...
//	xmlotel.InstrumentRoute(route, xmlotel.DefaultConfig())
package xmlotel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "xmlrpc"

// OtelConfig configures OpenTelemetry instrumentation for an XML-RPC route.
type OtelConfig struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// Propagator extracts trace context from transport metadata.
	// Defaults to otel.GetTextMapPropagator().
	Propagator propagation.TextMapPropagator
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for faulted calls.
	// Default true.
	RecordExceptions bool
	// ServiceName is the rpc.service attribute value.
	// Defaults to the route name.
	ServiceName string
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns an OtelConfig with tracing, metrics and exception
// recording enabled. Providers and the propagator are resolved from the
// global OTel SDK at instrumentation time.
func DefaultConfig() OtelConfig {
	return OtelConfig{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// InstrumentRoute attaches OpenTelemetry instrumentation to a route.
// The hook is installed via [xmlrpc.Route.SetDispatchHook].
func InstrumentRoute(route *xmlrpc.Route, cfg OtelConfig) {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = route.Name()
	}

	hook := &otelHook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		hook.requestCounter, _ = meter.Int64Counter("rpc.server.requests",
			metric.WithUnit("{request}"),
			metric.WithDescription("Number of XML-RPC calls"),
		)
		hook.durationHistogram, _ = meter.Float64Histogram("rpc.server.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of XML-RPC calls"),
		)
	}

	route.SetDispatchHook(hook)
}

type otelHook struct {
	cfg               OtelConfig
	tracer            trace.Tracer
	requestCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// spanToken is the HookToken returned by OnDispatchStart.
type spanToken struct {
	span      trace.Span
	startTime time.Time
}

// OnDispatchStart extracts the parent trace context and starts a server span.
func (h *otelHook) OnDispatchStart(ctx context.Context, info xmlrpc.DispatchInfo) (context.Context, xmlrpc.HookToken) {
	if h.cfg.Propagator != nil && info.TransportMetadata != nil {
		ctx = h.cfg.Propagator.Extract(ctx, propagation.MapCarrier(info.TransportMetadata))
	}

	if !h.cfg.EnableTracing {
		return ctx, &spanToken{startTime: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("rpc.system", "xmlrpc"),
		attribute.String("rpc.service", h.cfg.ServiceName),
		attribute.String("rpc.method", info.Method),
		attribute.Bool("rpc.xmlrpc.introspection", info.Reserved),
		attribute.String("rpc.xmlrpc.request_id", info.RequestID),
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	if v := info.TransportMetadata["remote_addr"]; v != "" {
		attrs = append(attrs, attribute.String("net.peer.ip", v))
	}
	if v := info.TransportMetadata["user_agent"]; v != "" {
		attrs = append(attrs, attribute.String("user_agent.original", v))
	}

	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("xmlrpc/%s", info.Method),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	return ctx, &spanToken{span: span, startTime: time.Now()}
}

// OnDispatchEnd records metrics and span status, then ends the span.
func (h *otelHook) OnDispatchEnd(ctx context.Context, token xmlrpc.HookToken, info xmlrpc.DispatchInfo, result xmlrpc.DispatchResult) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}
	duration := time.Since(st.startTime)
	status := statusOf(result)

	if h.cfg.EnableMetrics {
		metricAttrs := metric.WithAttributes(
			attribute.String("rpc.system", "xmlrpc"),
			attribute.String("rpc.service", h.cfg.ServiceName),
			attribute.String("rpc.method", info.Method),
			attribute.String("status", status),
		)
		if h.requestCounter != nil {
			h.requestCounter.Add(ctx, 1, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, duration.Seconds(), metricAttrs)
		}
	}

	if st.span == nil || !st.span.IsRecording() {
		return
	}
	st.span.SetAttributes(attribute.String("rpc.xmlrpc.outcome", result.Outcome.String()))
	if result.HTTPStatus != 0 {
		st.span.SetAttributes(attribute.Int("http.response.status_code", result.HTTPStatus))
	}
	if result.FaultCode != 0 {
		st.span.SetAttributes(attribute.Int("rpc.xmlrpc.fault_code", result.FaultCode))
	}

	if status != "ok" {
		msg := status
		if result.Err != nil {
			msg = result.Err.Error()
		}
		st.span.SetStatus(codes.Error, msg)
		if h.cfg.RecordExceptions && result.Err != nil {
			st.span.RecordError(result.Err)
		}
	} else {
		st.span.SetStatus(codes.Ok, "")
	}
	st.span.End()
}

// statusOf classifies a result as "ok", "fault" or "error".
func statusOf(result xmlrpc.DispatchResult) string {
	switch {
	case result.FaultCode != 0:
		return "fault"
	case result.Outcome == xmlrpc.OutcomeFailed:
		return "error"
	case result.Err != nil:
		return "error"
	case result.HTTPStatus >= 400:
		return "http_" + strconv.Itoa(result.HTTPStatus)
	}
	return "ok"
}
