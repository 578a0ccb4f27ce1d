package xmlrpc

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

func TestRateLimit(t *testing.T) {
	route := NewRoute().Use(RateLimit(0, 2))
	Method2(route, "add", Int, Int, func(_ *CallContext, a, b int) (int, error) {
		return a + b, nil
	})

	requireValue(t, serveRoute(route, "add", wire.Int(1), wire.Int(1)), wire.Int(2))
	requireValue(t, serveRoute(route, "add", wire.Int(2), wire.Int(2)), wire.Int(4))
	requireFault(t, serveRoute(route, "add", wire.Int(3), wire.Int(3)), 429, "Rate limit exceeded")
}

func TestRateLimit_IgnoresNonCalls(t *testing.T) {
	stage := RateLimit(0, 0)

	cc, _ := newCallContext(NewRegistry(), "add")
	cc.HTTPMethod = http.MethodGet
	assert.Equal(t, OutcomeDeclined, stage.Serve(cc).Kind())

	cc, _ = newCallContext(NewRegistry(), "add")
	cc.Call, cc.XML = nil, false
	assert.Equal(t, OutcomeDeclined, stage.Serve(cc).Kind())

	cc, hook := newCallContext(NewRegistry(), "add")
	requireFault(t, stage.Serve(cc), 429, "Rate limit exceeded")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "XML-RPC call rejected by rate limit", hook.LastEntry().Message)
}
