package xmlrpc

import (
	"fmt"
	"net/http"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// StatusError is a transport-level failure answered with an HTTP status
// instead of an XML-RPC fault.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Faults produced by the dispatch and introspection stages.
var (
	// FaultInvalidParams answers a call whose arguments do not match the
	// handler's arity or types.
	FaultInvalidParams = wire.Fault{Code: 400, Reason: "Invalid parameters"}
	// FaultCallFailed answers a call whose handler returned an error that
	// is not a fault. The original error is logged, never returned.
	FaultCallFailed = wire.Fault{Code: 500, Reason: "Call to XML-RPC function failed."}
	// FaultMissingName answers an introspection call without its method
	// name argument.
	FaultMissingName = wire.Fault{Code: 400, Reason: "Missing method name parameter!"}
)

func faultUnknownMethod(name string) wire.Fault {
	return wire.Fault{Code: 404, Reason: fmt.Sprintf("Unknown method '%s'.", name)}
}

func faultNotFound(name string) wire.Fault {
	return wire.Fault{Code: 404, Reason: fmt.Sprintf("Method '%s' not found.", name)}
}

func faultResponse(f wire.Fault) wire.Response {
	return wire.FaultResponse(f.Code, f.Reason)
}
