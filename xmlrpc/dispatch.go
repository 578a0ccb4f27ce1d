// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// Handler implements an XML-RPC method on untyped parameters. The result
// is converted with [wire.ValueOf]. Returning a [wire.Fault] answers the
// call with that fault; any other error answers with [FaultCallFailed].
type Handler func(cc *CallContext, params []wire.Value) (any, error)

// SynchronousCall returns a stage that invokes h for calls named
// methodName. An empty methodName matches every call.
func SynchronousCall(methodName string, h Handler) Stage {
	return StageFunc(func(cc *CallContext) Outcome {
		call, out, ok := cc.pending()
		if !ok {
			return out
		}
		if methodName != "" && methodName != call.MethodName {
			return Declined()
		}
		result, err := invoke(cc, h, call.Params)
		return Handled(respond(cc, result, err))
	})
}

// invoke runs h, converting a panic into an error.
func invoke(cc *CallContext, h Handler, params []wire.Value) (result any, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			err = errors.Errorf("panic: %v", rv)
		}
	}()
	return h(cc, params)
}

// encodeResult converts a handler result, converting a panic raised by a
// Valuer into an error.
func encodeResult(result any) (v wire.Value, err error) {
	defer func() {
		if rv := recover(); rv != nil {
			err = errors.Errorf("panic while encoding result: %v", rv)
		}
	}()
	return wire.ValueOf(result)
}

// respond translates a handler result into a response.
func respond(cc *CallContext, result any, err error) wire.Response {
	log := cc.logger()
	if err != nil {
		if f, ok := wire.AsFault(err); ok {
			log.WithFields(logrus.Fields{
				"fault_code":   f.Code,
				"fault_string": f.Reason,
			}).Error("XML-RPC call returned a fault")
			return faultResponse(f)
		}
		log.WithError(err).Error("XML-RPC call failed")
		return faultResponse(FaultCallFailed)
	}

	v, err := encodeResult(result)
	if err != nil {
		log.WithError(err).WithField("result_type", fmt.Sprintf("%T", result)).
			Error("XML-RPC result could not be encoded")
		return faultResponse(FaultCallFailed)
	}
	log.Debug("XML-RPC call executed")
	return wire.ValueResponse(v)
}
