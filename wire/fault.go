package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fault is the XML-RPC structured error. Handlers return it (by value or
// pointer) to signal a declared protocol failure.
type Fault struct {
	Code   int
	Reason string
}

func (f Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Reason)
}

// AsFault extracts a Fault from anywhere in err's chain.
func AsFault(err error) (Fault, bool) {
	var pf *Fault
	if errors.As(err, &pf) && pf != nil {
		return *pf, true
	}
	var f Fault
	if errors.As(err, &f) {
		return f, true
	}
	return Fault{}, false
}

// Call is a decoded methodCall.
type Call struct {
	MethodName string
	Params     []Value
}

// Response is either a value or a fault, never both.
type Response struct {
	value Value
	fault *Fault
}

// ValueResponse wraps a successful result.
func ValueResponse(v Value) Response { return Response{value: v} }

// FaultResponse wraps a fault.
func FaultResponse(code int, reason string) Response {
	return Response{fault: &Fault{Code: code, Reason: reason}}
}

func (r Response) IsFault() bool { return r.fault != nil }

// Value returns the result value; it is null for faults.
func (r Response) Value() Value { return r.value }

// Fault returns the fault, if any.
func (r Response) Fault() (Fault, bool) {
	if r.fault == nil {
		return Fault{}, false
	}
	return *r.fault, true
}

// Equal compares two responses by outcome.
func (r Response) Equal(o Response) bool {
	if r.IsFault() != o.IsFault() {
		return false
	}
	if r.IsFault() {
		return *r.fault == *o.fault
	}
	return r.value.Equal(o.value)
}

func (r Response) String() string {
	if r.fault != nil {
		return fmt.Sprintf("fault(%d, %q)", r.fault.Code, r.fault.Reason)
	}
	return "value(" + r.value.String() + ")"
}
