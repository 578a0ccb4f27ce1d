package xmlrpc

import (
	"context"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// newCallContext returns a POST call context for method and params, with
// a logger whose entries are captured by the returned hook.
func newCallContext(reg *Registry, method string, params ...wire.Value) (*CallContext, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	if params == nil {
		params = []wire.Value{}
	}
	return &CallContext{
		Ctx:        context.Background(),
		HTTPMethod: http.MethodPost,
		XML:        true,
		Call:       &wire.Call{MethodName: method, Params: params},
		Registry:   reg,
		Log:        logrus.NewEntry(logger),
		RequestID:  "test",
		Route:      "test",
	}, hook
}

// requireResponse asserts out is handled and returns its response.
func requireResponse(t *testing.T, out Outcome) wire.Response {
	t.Helper()
	require.Equal(t, OutcomeHandled, out.Kind(), "outcome error: %v", out.Err())
	resp, ok := out.Response()
	require.True(t, ok)
	return resp
}

func requireFault(t *testing.T, out Outcome, code int, reason string) {
	t.Helper()
	resp := requireResponse(t, out)
	f, ok := resp.Fault()
	require.True(t, ok, "expected fault, got %s", resp)
	require.Equal(t, code, f.Code)
	require.Equal(t, reason, f.Reason)
}

func requireValue(t *testing.T, out Outcome, want wire.Value) {
	t.Helper()
	resp := requireResponse(t, out)
	require.False(t, resp.IsFault(), "unexpected %s", resp)
	require.True(t, want.Equal(resp.Value()), "want %s, got %s", want, resp.Value())
}
