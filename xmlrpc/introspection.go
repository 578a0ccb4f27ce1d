// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// CapabilitiesSpecURL is the introspection specification advertised by
// getCapabilities.
const CapabilitiesSpecURL = "http://xmlrpc-c.sourceforge.net/xmlrpc-c/introspection.html"

var reservedSignatures = map[string][]wire.ValueType{
	MethodListMethods:  {},
	MethodCapabilities: {},
	MethodSignature:    {wire.TypeString},
	MethodHelp:         {wire.TypeString},
	MethodExist:        {wire.TypeString},
}

// Introspection returns the stage that answers the five reserved
// introspection methods from the route's registry. Every other call is
// declined.
func Introspection() Stage {
	return StageFunc(func(cc *CallContext) Outcome {
		call, out, ok := cc.pending()
		if !ok {
			return out
		}
		reg := cc.Registry
		if reg == nil {
			return Declined()
		}

		switch call.MethodName {
		case MethodListMethods:
			for _, name := range reservedMethods {
				reg.Register(name)
			}
			methods := reg.Methods()
			names := make([]wire.Value, len(methods))
			for i, m := range methods {
				names[i] = wire.String(m)
			}
			return Handled(wire.ValueResponse(wire.Array(names...)))

		case MethodSignature:
			name, ok := targetName(cc, call)
			if !ok {
				return Handled(faultResponse(FaultMissingName))
			}
			for _, m := range reservedMethods {
				reg.ensureSignature(m, reservedSignatures[m])
			}
			if sigs := reg.Signatures(name); len(sigs) > 0 {
				return Handled(wire.ValueResponse(signaturesValue(sigs)))
			}
			if reg.IsKnown(name) {
				cc.logger().WithField("target", name).Error("XML-RPC method is known but has no signature")
				return Failed(&StatusError{
					Status:  http.StatusInternalServerError,
					Message: fmt.Sprintf("method '%s' has no registered signature", name),
				})
			}
			return unknownTarget(cc, name)

		case MethodHelp:
			name, ok := targetName(cc, call)
			if !ok {
				return Handled(faultResponse(FaultMissingName))
			}
			if help, ok := reg.Help(name); ok {
				return Handled(wire.ValueResponse(wire.String(help)))
			}
			if sigs := reg.Signatures(name); len(sigs) > 0 {
				return Handled(wire.ValueResponse(wire.String(synthesizeHelp(name, sigs))))
			}
			if reg.IsKnown(name) {
				return Handled(wire.ValueResponse(wire.String(
					fmt.Sprintf("The method '%s' exists, but no documentation is available.", name))))
			}
			return unknownTarget(cc, name)

		case MethodExist:
			name, ok := targetName(cc, call)
			if !ok {
				return Handled(faultResponse(FaultMissingName))
			}
			return Handled(wire.ValueResponse(wire.Bool(reg.IsKnown(name))))

		case MethodCapabilities:
			return Handled(wire.ValueResponse(capabilities()))
		}
		return Declined()
	})
}

// targetName extracts the method name argument of a single-argument
// introspection call.
func targetName(cc *CallContext, call *wire.Call) (string, bool) {
	if len(call.Params) > 0 {
		if name, ok := call.Params[0].AsString(); ok {
			return name, true
		}
	}
	cc.logger().Error("XML-RPC introspection call was missing a name!")
	return "", false
}

func unknownTarget(cc *CallContext, name string) Outcome {
	cc.logger().WithField("target", name).Warn("XML-RPC introspection for unknown method")
	return Handled(faultResponse(faultUnknownMethod(name)))
}

func signaturesValue(sigs [][]wire.ValueType) wire.Value {
	out := make([]wire.Value, len(sigs))
	for i, sig := range sigs {
		types := make([]wire.Value, len(sig))
		for j, t := range sig {
			types[j] = wire.String(t.String())
		}
		out[i] = wire.Array(types...)
	}
	return wire.Array(out...)
}

func synthesizeHelp(name string, sigs [][]wire.ValueType) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The method '%s' can be called with the following signatures:\n", name)
	for _, sig := range sigs {
		sb.WriteString("\n    ")
		sb.WriteString(formatSignature(name, sig))
	}
	return sb.String()
}

func formatSignature(name string, sig []wire.ValueType) string {
	types := make([]string, len(sig))
	for i, t := range sig {
		types[i] = t.String()
	}
	return name + "(" + strings.Join(types, ", ") + ")"
}

func capabilities() wire.Value {
	return wire.Dictionary(map[string]wire.Value{
		"introspection": wire.Dictionary(map[string]wire.Value{
			"specURL":     wire.String(CapabilitiesSpecURL),
			"specVersion": wire.Int(1),
		}),
	})
}
