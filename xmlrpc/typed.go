// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import "github.com/Query-farm/vgi-xmlrpc/wire"

// Method0 registers a method that takes no arguments.
func Method0[R any](route *Route, name string, fn func(*CallContext) (R, error)) {
	route.typed(name, nil, func(cc *CallContext, params []wire.Value) (any, error) {
		if len(params) != 0 {
			return nil, FaultInvalidParams
		}
		return fn(cc)
	})
}

// Method1 registers a method with one typed argument.
func Method1[A, R any](route *Route, name string, a Param[A], fn func(*CallContext, A) (R, error)) {
	route.typed(name, []wire.ValueType{a.Type}, func(cc *CallContext, params []wire.Value) (any, error) {
		if len(params) != 1 {
			return nil, FaultInvalidParams
		}
		av, ok := a.decode(params[0])
		if !ok {
			return nil, FaultInvalidParams
		}
		return fn(cc, av)
	})
}

// Method2 registers a method with two typed arguments.
func Method2[A, B, R any](route *Route, name string, a Param[A], b Param[B], fn func(*CallContext, A, B) (R, error)) {
	route.typed(name, []wire.ValueType{a.Type, b.Type}, func(cc *CallContext, params []wire.Value) (any, error) {
		if len(params) != 2 {
			return nil, FaultInvalidParams
		}
		av, ok := a.decode(params[0])
		if !ok {
			return nil, FaultInvalidParams
		}
		bv, ok := b.decode(params[1])
		if !ok {
			return nil, FaultInvalidParams
		}
		return fn(cc, av, bv)
	})
}

// Method3 registers a method with three typed arguments.
func Method3[A, B, C, R any](route *Route, name string, a Param[A], b Param[B], c Param[C], fn func(*CallContext, A, B, C) (R, error)) {
	route.typed(name, []wire.ValueType{a.Type, b.Type, c.Type}, func(cc *CallContext, params []wire.Value) (any, error) {
		if len(params) != 3 {
			return nil, FaultInvalidParams
		}
		av, ok := a.decode(params[0])
		if !ok {
			return nil, FaultInvalidParams
		}
		bv, ok := b.decode(params[1])
		if !ok {
			return nil, FaultInvalidParams
		}
		cv, ok := c.decode(params[2])
		if !ok {
			return nil, FaultInvalidParams
		}
		return fn(cc, av, bv, cv)
	})
}

// typed records the signature of name and appends its dispatch stage.
func (r *Route) typed(name string, sig []wire.ValueType, h Handler) {
	if sig == nil {
		sig = []wire.ValueType{}
	}
	r.registry.AddSignature(name, sig)
	r.Use(SynchronousCall(name, h))
}
