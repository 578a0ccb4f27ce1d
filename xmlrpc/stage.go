// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import "github.com/Query-farm/vgi-xmlrpc/wire"

// OutcomeKind identifies which of the three stage results an [Outcome] holds.
type OutcomeKind int

const (
	// OutcomeDeclined means the stage did not handle the call.
	OutcomeDeclined OutcomeKind = iota
	// OutcomeHandled means the stage produced an XML-RPC response.
	OutcomeHandled
	// OutcomeFailed means the stage hit a transport-level failure.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHandled:
		return "handled"
	case OutcomeFailed:
		return "failed"
	default:
		return "declined"
	}
}

// Outcome is the result of offering a call to a [Stage]. The zero value
// is a declined outcome.
type Outcome struct {
	kind     OutcomeKind
	response wire.Response
	err      error
}

// Handled returns an outcome carrying resp.
func Handled(resp wire.Response) Outcome {
	return Outcome{kind: OutcomeHandled, response: resp}
}

// Declined returns an outcome that passes the call on.
func Declined() Outcome {
	return Outcome{}
}

// Failed returns an outcome carrying a transport-level error. A
// [*StatusError] selects the HTTP status.
func Failed(err error) Outcome {
	return Outcome{kind: OutcomeFailed, err: err}
}

// Kind returns the outcome kind.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Response returns the response of a handled outcome.
func (o Outcome) Response() (wire.Response, bool) {
	return o.response, o.kind == OutcomeHandled
}

// Err returns the error of a failed outcome.
func (o Outcome) Err() error { return o.err }

// Stage is one step of the dispatch pipeline.
type Stage interface {
	Serve(cc *CallContext) Outcome
}

// StageFunc adapts a function to [Stage].
type StageFunc func(cc *CallContext) Outcome

// Serve calls f(cc).
func (f StageFunc) Serve(cc *CallContext) Outcome { return f(cc) }

// Sequence returns a stage that offers the call to each stage in order
// and returns the first outcome that is not declined.
func Sequence(stages ...Stage) Stage {
	return StageFunc(func(cc *CallContext) Outcome {
		for _, s := range stages {
			if out := s.Serve(cc); out.kind != OutcomeDeclined {
				return out
			}
		}
		return Declined()
	})
}
