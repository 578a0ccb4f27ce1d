// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"context"
	"mime"
	"net/http"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

type bodyKey struct{}

// parsedBody is stored in the request context once the body is read.
type parsedBody struct {
	xml  bool
	raw  []byte
	call *wire.Call
	err  error // parse error; nil when call is set
}

// isXML reports whether the request declares a text/xml body.
func isXML(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "text/xml"
}

// BodyParser reads and parses text/xml request bodies before calling
// next, storing the result in the request context. Requests whose body
// was already parsed are passed through untouched.
func BodyParser(next http.Handler) http.Handler {
	return BodyParserWithLimit(DefaultMaxBodySize)(next)
}

// BodyParserWithLimit is [BodyParser] with an explicit cap on the decoded
// body size.
func BodyParserWithLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, err := parseRequest(r, limit)
			if err != nil {
				http.Error(w, err.Message, err.Status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseRequest returns r with its parsed body attached to the context.
func parseRequest(r *http.Request, limit int64) (*http.Request, *StatusError) {
	if _, ok := r.Context().Value(bodyKey{}).(*parsedBody); ok {
		return r, nil
	}
	pb := &parsedBody{xml: isXML(r)}
	if pb.xml {
		raw, err := readBody(r, limit)
		if err != nil {
			if se, ok := err.(*StatusError); ok {
				return r, se
			}
			return r, &StatusError{Status: http.StatusBadRequest, Message: err.Error()}
		}
		pb.raw = raw
		pb.call, pb.err = wire.ParseCall(raw)
	}
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, pb)), nil
}

func bodyFrom(ctx context.Context) *parsedBody {
	pb, _ := ctx.Value(bodyKey{}).(*parsedBody)
	return pb
}

// BodyFromContext returns the raw text/xml body read by [BodyParser].
func BodyFromContext(ctx context.Context) ([]byte, bool) {
	pb := bodyFrom(ctx)
	if pb == nil || !pb.xml {
		return nil, false
	}
	return pb.raw, true
}

// CallFromContext returns the call parsed by [BodyParser]. It reports
// false when the body was not XML or did not parse.
func CallFromContext(ctx context.Context) (*wire.Call, bool) {
	pb := bodyFrom(ctx)
	if pb == nil || pb.call == nil {
		return nil, false
	}
	return pb.call, true
}
