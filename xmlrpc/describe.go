// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/pkg/errors"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// Describe metadata keys.
const (
	MetaProtocolName    = "xmlrpc.protocol_name"
	MetaDescribeVersion = "xmlrpc.describe_version"
	DescribeVersion     = "1"
)

var describeFields = []arrow.Field{
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "signatures_json", Type: arrow.BinaryTypes.String},
	{Name: "help", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "reserved", Type: &arrow.BooleanType{}},
}

// MethodDescription is one row of the describe batch.
type MethodDescription struct {
	Name       string
	Signatures [][]string
	Help       string
	HasHelp    bool
	Reserved   bool
}

// describeNames returns the registered names plus the reserved ones.
func describeNames(reg *Registry) []string {
	names := reg.Methods()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range reservedMethods {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// buildDescribeBatch builds the describe record batch for reg.
func buildDescribeBatch(reg *Registry, protocolName string) (arrow.RecordBatch, error) {
	mem := memory.NewGoAllocator()
	meta := arrow.NewMetadata(
		[]string{MetaProtocolName, MetaDescribeVersion},
		[]string{protocolName, DescribeVersion},
	)
	schema := arrow.NewSchema(describeFields, &meta)

	nameBuilder := array.NewStringBuilder(mem)
	defer nameBuilder.Release()

	sigBuilder := array.NewStringBuilder(mem)
	defer sigBuilder.Release()

	helpBuilder := array.NewStringBuilder(mem)
	defer helpBuilder.Release()

	reservedBuilder := array.NewBooleanBuilder(mem)
	defer reservedBuilder.Release()

	names := describeNames(reg)
	for _, name := range names {
		sigJSON, err := json.Marshal(signatureNames(signaturesOrReserved(reg, name)))
		if err != nil {
			return nil, errors.Wrapf(err, "marshal signatures of %q", name)
		}
		nameBuilder.Append(name)
		sigBuilder.Append(string(sigJSON))
		if help, ok := reg.Help(name); ok {
			helpBuilder.Append(help)
		} else {
			helpBuilder.AppendNull()
		}
		reservedBuilder.Append(IsReserved(name))
	}

	cols := []arrow.Array{
		nameBuilder.NewArray(),
		sigBuilder.NewArray(),
		helpBuilder.NewArray(),
		reservedBuilder.NewArray(),
	}
	for _, c := range cols {
		defer c.Release()
	}
	return array.NewRecordBatch(schema, cols, int64(len(names))), nil
}

// signaturesOrReserved reports the implicit signature of a reserved
// method that has not been introspected yet.
func signaturesOrReserved(reg *Registry, name string) [][]wire.ValueType {
	sigs := reg.Signatures(name)
	if len(sigs) == 0 && IsReserved(name) {
		return [][]wire.ValueType{reservedSignatures[name]}
	}
	return sigs
}

func signatureNames(sigs [][]wire.ValueType) [][]string {
	out := make([][]string, len(sigs))
	for i, sig := range sigs {
		out[i] = make([]string, len(sig))
		for j, t := range sig {
			out[i][j] = t.String()
		}
	}
	return out
}

// WriteDescribe writes the registry as an Arrow IPC stream holding one
// record batch.
func WriteDescribe(w io.Writer, reg *Registry, protocolName string) error {
	batch, err := buildDescribeBatch(reg, protocolName)
	if err != nil {
		return err
	}
	defer batch.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(batch.Schema()))
	if err := writer.Write(batch); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "write describe batch")
	}
	return errors.Wrap(writer.Close(), "close describe stream")
}

// ReadDescribe decodes a stream produced by [WriteDescribe]. It returns
// the rows and the protocol name from the schema metadata.
func ReadDescribe(r io.Reader) ([]MethodDescription, string, error) {
	reader, err := ipc.NewReader(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "open describe stream")
	}
	defer reader.Release()

	var protocolName string
	if v, ok := reader.Schema().Metadata().GetValue(MetaProtocolName); ok {
		protocolName = v
	}

	var out []MethodDescription
	for reader.Next() {
		batch := reader.RecordBatch()
		if batch.NumCols() < int64(len(describeFields)) {
			return nil, "", errors.New("unexpected describe schema")
		}
		names, ok1 := batch.Column(0).(*array.String)
		sigs, ok2 := batch.Column(1).(*array.String)
		helps, ok3 := batch.Column(2).(*array.String)
		reserved, ok4 := batch.Column(3).(*array.Boolean)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, "", errors.New("unexpected describe schema")
		}
		for i := 0; i < int(batch.NumRows()); i++ {
			d := MethodDescription{Name: names.Value(i), Reserved: reserved.Value(i)}
			if err := json.Unmarshal([]byte(sigs.Value(i)), &d.Signatures); err != nil {
				return nil, "", errors.Wrapf(err, "signatures of %q", d.Name)
			}
			if helps.IsValid(i) {
				d.Help, d.HasHelp = helps.Value(i), true
			}
			out = append(out, d)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, "", errors.Wrap(err, "read describe stream")
	}
	return out, protocolName, nil
}

// wantsArrow reports whether a GET asks for the Arrow describe stream.
func wantsArrow(req *http.Request) bool {
	if _, ok := req.URL.Query()["describe"]; ok {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), arrowContentType)
}

func (r *Route) serveDescribe(w http.ResponseWriter, req *http.Request) {
	var buf bytes.Buffer
	if err := WriteDescribe(&buf, r.registry, r.protocolName); err != nil {
		r.log.WithError(err).WithField("route", r.name).Error("describe failed")
		http.Error(w, "describe failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", arrowContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
