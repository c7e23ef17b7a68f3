package checkout

import (
	"context"
	"strings"
	"time"
)

// SimulatedProcessor stands in for a payment gateway: it waits Delay and
// then approves, or fails with Err when set.
type SimulatedProcessor struct {
	Delay time.Duration
	Err   error
}

func (p SimulatedProcessor) Process(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return PaymentResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	if p.Err != nil {
		return PaymentResult{}, p.Err
	}
	ref := strings.ToUpper(strings.ReplaceAll(req.AttemptID, "-", ""))
	if len(ref) > 12 {
		ref = ref[:12]
	}
	return PaymentResult{Reference: "SIM-" + ref}, nil
}
