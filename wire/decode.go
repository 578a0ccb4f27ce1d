// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

const (
	iso8601        = "20060102T15:04:05"
	iso8601Z       = "20060102T15:04:05Z07:00"
	iso8601Hyphen  = "2006-01-02T15:04:05"
	iso8601HyphenZ = "2006-01-02T15:04:05Z07:00"
)

var timeLayouts = []string{iso8601, iso8601Z, iso8601Hyphen, iso8601HyphenZ}

// ErrMalformed is the cause of every decode error returned by this package.
var ErrMalformed = errors.New("malformed XML-RPC document")

type decoder struct {
	*xml.Decoder
}

func newDecoder(data []byte) *decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.CharsetReader = charset.NewReaderLabel
	return &decoder{d}
}

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

// ParseCall decodes a <methodCall> document.
func ParseCall(data []byte) (*Call, error) {
	d := newDecoder(data)
	root, err := d.root()
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "methodCall" {
		return nil, malformed("expected <methodCall>, got <%s>", root.Name.Local)
	}

	call := &Call{}
	seenName := false
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "methodName":
				name, err := d.text()
				if err != nil {
					return nil, err
				}
				call.MethodName = strings.TrimSpace(name)
				seenName = true
			case "params":
				if call.Params, err = d.params(); err != nil {
					return nil, err
				}
			default:
				return nil, malformed("unexpected <%s> in <methodCall>", t.Name.Local)
			}
		case xml.EndElement:
			if !seenName || call.MethodName == "" {
				return nil, malformed("missing <methodName>")
			}
			if call.Params == nil {
				call.Params = []Value{}
			}
			return call, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return nil, malformed("unexpected text in <methodCall>")
			}
		}
	}
}

// ParseResponse decodes a <methodResponse> document, either a single
// result parameter or a fault.
func ParseResponse(data []byte) (*Response, error) {
	d := newDecoder(data)
	root, err := d.root()
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "methodResponse" {
		return nil, malformed("expected <methodResponse>, got <%s>", root.Name.Local)
	}

	var resp *Response
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if resp != nil {
				return nil, malformed("more than one result in <methodResponse>")
			}
			switch t.Name.Local {
			case "params":
				params, err := d.params()
				if err != nil {
					return nil, err
				}
				if len(params) != 1 {
					return nil, malformed("expected 1 result parameter, got %d", len(params))
				}
				r := ValueResponse(params[0])
				resp = &r
			case "fault":
				f, err := d.fault()
				if err != nil {
					return nil, err
				}
				r := FaultResponse(f.Code, f.Reason)
				resp = &r
			default:
				return nil, malformed("unexpected <%s> in <methodResponse>", t.Name.Local)
			}
		case xml.EndElement:
			if resp == nil {
				return nil, malformed("empty <methodResponse>")
			}
			return resp, nil
		}
	}
}

// root skips the prolog and returns the document element.
func (d *decoder) root() (xml.StartElement, error) {
	for {
		tok, err := d.next()
		if err != nil {
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return xml.StartElement{}, malformed("text before document element")
			}
		case xml.EndElement:
			return xml.StartElement{}, malformed("unexpected </%s>", t.Name.Local)
		}
	}
}

// next returns the next structural token, dropping comments, processing
// instructions and directives.
func (d *decoder) next() (xml.Token, error) {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, malformed("unexpected end of document")
		}
		if err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}
		switch tok.(type) {
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		}
		return tok, nil
	}
}

// text collects the character data of the current element up to its end
// tag. Child elements are an error.
func (d *decoder) text() (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.next()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			return "", malformed("unexpected <%s> in text element", t.Name.Local)
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

func (d *decoder) params() ([]Value, error) {
	params := []Value{}
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "param" {
				return nil, malformed("unexpected <%s> in <params>", t.Name.Local)
			}
			v, err := d.param()
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		case xml.EndElement:
			return params, nil
		}
	}
}

func (d *decoder) param() (Value, error) {
	var v Value
	seen := false
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" || seen {
				return Value{}, malformed("unexpected <%s> in <param>", t.Name.Local)
			}
			if v, err = d.value(); err != nil {
				return Value{}, err
			}
			seen = true
		case xml.EndElement:
			if !seen {
				return Value{}, malformed("<param> without <value>")
			}
			return v, nil
		}
	}
}

func (d *decoder) fault() (Fault, error) {
	var f Fault
	seen := false
	for {
		tok, err := d.next()
		if err != nil {
			return Fault{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" || seen {
				return Fault{}, malformed("unexpected <%s> in <fault>", t.Name.Local)
			}
			v, err := d.value()
			if err != nil {
				return Fault{}, err
			}
			members, ok := v.AsDictionary()
			if !ok {
				return Fault{}, malformed("fault value is not a struct")
			}
			code, ok := members["faultCode"].AsInt()
			if !ok {
				return Fault{}, malformed("fault without integer faultCode")
			}
			reason, _ := members["faultString"].AsString()
			f = Fault{Code: int(code), Reason: reason}
			seen = true
		case xml.EndElement:
			if !seen {
				return Fault{}, malformed("empty <fault>")
			}
			return f, nil
		}
	}
}

// value decodes the body of a <value> element. A value without a type
// element is a string.
func (d *decoder) value() (Value, error) {
	var raw strings.Builder
	var v Value
	typed := false
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if !typed {
				raw.Write(t)
			}
		case xml.StartElement:
			if typed {
				return Value{}, malformed("more than one type in <value>")
			}
			if v, err = d.typed(t.Name.Local); err != nil {
				return Value{}, err
			}
			typed = true
		case xml.EndElement:
			if !typed {
				return String(raw.String()), nil
			}
			return v, nil
		}
	}
}

func (d *decoder) typed(name string) (Value, error) {
	switch name {
	case "struct":
		return d.dictionary()
	case "array":
		return d.array()
	}

	s, err := d.text()
	if err != nil {
		return Value{}, err
	}
	switch name {
	case "i4", "int", "i8":
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, malformed("bad <%s> %q", name, s)
		}
		return Int(i), nil
	case "boolean":
		switch strings.TrimSpace(s) {
		case "1", "true":
			return Bool(true), nil
		case "0", "false":
			return Bool(false), nil
		}
		return Value{}, malformed("bad <boolean> %q", s)
	case "string":
		return String(s), nil
	case "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, malformed("bad <double> %q", s)
		}
		return Double(f), nil
	case "dateTime.iso8601":
		t, err := parseDateTime(strings.TrimSpace(s))
		if err != nil {
			return Value{}, err
		}
		return DateTime(t), nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(stripSpace(s))
		if err != nil {
			return Value{}, malformed("bad <base64>: %v", err)
		}
		return Data(b), nil
	case "nil":
		return Null(), nil
	}
	return Value{}, malformed("unsupported value type <%s>", name)
}

func (d *decoder) array() (Value, error) {
	elems := []Value{}
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "data" {
				return Value{}, malformed("unexpected <%s> in <array>", t.Name.Local)
			}
			data, err := d.arrayData()
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, data...)
		case xml.EndElement:
			return Array(elems...), nil
		}
	}
}

func (d *decoder) arrayData() ([]Value, error) {
	var elems []Value
	for {
		tok, err := d.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" {
				return nil, malformed("unexpected <%s> in <data>", t.Name.Local)
			}
			v, err := d.value()
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		case xml.EndElement:
			return elems, nil
		}
	}
}

func (d *decoder) dictionary() (Value, error) {
	members := map[string]Value{}
	for {
		tok, err := d.next()
		if err != nil {
			return Value{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "member" {
				return Value{}, malformed("unexpected <%s> in <struct>", t.Name.Local)
			}
			name, v, err := d.member()
			if err != nil {
				return Value{}, err
			}
			members[name] = v
		case xml.EndElement:
			return Dictionary(members), nil
		}
	}
}

func (d *decoder) member() (string, Value, error) {
	var (
		name      string
		v         Value
		seenName  bool
		seenValue bool
	)
	for {
		tok, err := d.next()
		if err != nil {
			return "", Value{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if name, err = d.text(); err != nil {
					return "", Value{}, err
				}
				seenName = true
			case "value":
				if v, err = d.value(); err != nil {
					return "", Value{}, err
				}
				seenValue = true
			default:
				return "", Value{}, malformed("unexpected <%s> in <member>", t.Name.Local)
			}
		case xml.EndElement:
			if !seenName || !seenValue {
				return "", Value{}, malformed("incomplete <member>")
			}
			return name, v, nil
		}
	}
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, malformed("bad <dateTime.iso8601> %q", s)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
