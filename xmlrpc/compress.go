// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// DefaultMaxBodySize caps decompressed request bodies.
const DefaultMaxBodySize int64 = 8 << 20

// readBody reads the request body, undoing any Content-Encoding, and
// enforces limit on the decoded size.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return []byte{}, nil
	}
	body, err := decodeBody(r)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, &StatusError{Status: http.StatusBadRequest, Message: errors.Wrap(err, "reading body").Error()}
	}
	if int64(len(data)) > limit {
		return nil, &StatusError{Status: http.StatusRequestEntityTooLarge, Message: "request body too large"}
	}
	return data, nil
}

func decodeBody(r *http.Request) (io.ReadCloser, error) {
	switch enc := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return r.Body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, &StatusError{Status: http.StatusBadRequest, Message: "invalid gzip body"}
		}
		return zr, nil
	case "deflate":
		return flate.NewReader(r.Body), nil
	case "zstd":
		zr, err := zstd.NewReader(r.Body)
		if err != nil {
			return nil, &StatusError{Status: http.StatusBadRequest, Message: "invalid zstd body"}
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, &StatusError{Status: http.StatusUnsupportedMediaType, Message: "unsupported Content-Encoding " + enc}
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			return strings.ReplaceAll(params, " ", "") != "q=0"
		}
	}
	return false
}

// writeBody writes body with status, gzip-compressing it when level
// allows and the client accepts it.
func writeBody(w http.ResponseWriter, r *http.Request, status int, contentType string, body []byte, level int) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	if level == gzip.NoCompression || !acceptsGzip(r) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}
	zw, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}
	h.Set("Content-Encoding", "gzip")
	h.Add("Vary", "Accept-Encoding")
	w.WriteHeader(status)
	_, _ = zw.Write(body)
	_ = zw.Close()
}
