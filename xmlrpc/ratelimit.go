// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package xmlrpc

import (
	"golang.org/x/time/rate"

	"github.com/Query-farm/vgi-xmlrpc/wire"
)

// FaultRateLimited answers a call rejected by a [RateLimit] stage.
var FaultRateLimited = wire.Fault{Code: 429, Reason: "Rate limit exceeded"}

// RateLimit returns a stage backed by a token bucket refilled at r calls
// per second with the given burst. While tokens remain it declines, so the
// next stage handles the call; once the bucket is empty it answers with
// [FaultRateLimited]. Place it first in the pipeline.
func RateLimit(r float64, burst int) Stage {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return StageFunc(func(cc *CallContext) Outcome {
		if _, out, ok := cc.pending(); !ok {
			return out
		}
		if limiter.Allow() {
			return Declined()
		}
		cc.logger().WithField("limit", r).Warn("XML-RPC call rejected by rate limit")
		return Handled(faultResponse(FaultRateLimited))
	})
}
