// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"math"
	"strconv"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// EncodeCall serializes a methodCall document.
func EncodeCall(method string, params ...Value) []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	b.WriteString("<methodCall><methodName>")
	escape(&b, method)
	b.WriteString("</methodName><params>")
	for _, p := range params {
		b.WriteString("<param>")
		writeValue(&b, p)
		b.WriteString("</param>")
	}
	b.WriteString("</params></methodCall>")
	return b.Bytes()
}

// XML serializes the call.
func (c *Call) XML() []byte {
	return EncodeCall(c.MethodName, c.Params...)
}

// XML serializes the response as a methodResponse document.
func (r Response) XML() []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	b.WriteString("<methodResponse>")
	if r.fault != nil {
		b.WriteString("<fault>")
		writeValue(&b, Dictionary(map[string]Value{
			"faultCode":   Int(int64(r.fault.Code)),
			"faultString": String(r.fault.Reason),
		}))
		b.WriteString("</fault>")
	} else {
		b.WriteString("<params><param>")
		writeValue(&b, r.value)
		b.WriteString("</param></params>")
	}
	b.WriteString("</methodResponse>")
	return b.Bytes()
}

func writeValue(b *bytes.Buffer, v Value) {
	b.WriteString("<value>")
	switch v.typ {
	case TypeNull:
		b.WriteString("<nil/>")
	case TypeString:
		b.WriteString("<string>")
		escape(b, v.str)
		b.WriteString("</string>")
	case TypeBool:
		if v.b {
			b.WriteString("<boolean>1</boolean>")
		} else {
			b.WriteString("<boolean>0</boolean>")
		}
	case TypeInt:
		// i4 is 32-bit; wider values use the common i8 extension.
		tag := "int"
		if v.i > math.MaxInt32 || v.i < math.MinInt32 {
			tag = "i8"
		}
		b.WriteString("<" + tag + ">")
		b.WriteString(strconv.FormatInt(v.i, 10))
		b.WriteString("</" + tag + ">")
	case TypeDouble:
		b.WriteString("<double>")
		b.WriteString(strconv.FormatFloat(v.f, 'f', -1, 64))
		b.WriteString("</double>")
	case TypeDateTime:
		// The wire form has no zone; it is always written as UTC.
		b.WriteString("<dateTime.iso8601>")
		b.WriteString(v.t.UTC().Format(iso8601))
		b.WriteString("</dateTime.iso8601>")
	case TypeData:
		b.WriteString("<base64>")
		b.WriteString(base64.StdEncoding.EncodeToString(v.data))
		b.WriteString("</base64>")
	case TypeArray:
		b.WriteString("<array><data>")
		for _, e := range v.arr {
			writeValue(b, e)
		}
		b.WriteString("</data></array>")
	case TypeDictionary:
		b.WriteString("<struct>")
		for _, k := range sortedKeys(v.dict) {
			b.WriteString("<member><name>")
			escape(b, k)
			b.WriteString("</name>")
			writeValue(b, v.dict[k])
			b.WriteString("</member>")
		}
		b.WriteString("</struct>")
	}
	b.WriteString("</value>")
}

func escape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
