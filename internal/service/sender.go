// internal/service/sender.go
package service

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Sender delivers one rendered message to one phone number. A nil return
// means delivered; any error is recorded on the message as a terminal failure
// for this dispatch cycle.
type Sender interface {
	Send(ctx context.Context, phone, content string) error
}

// ErrNetworkTimeout is the failure reason the simulated transport produces.
var ErrNetworkTimeout = errors.New("Network timeout")

// SimulatedSender mimics a flaky transport: a fixed per-message delay, then
// success with probability SuccessRate.
type SimulatedSender struct {
	Delay       time.Duration
	SuccessRate float64
	rng         *rand.Rand
}

func NewSimulatedSender(delay time.Duration, successRate float64) *SimulatedSender {
	return &SimulatedSender{
		Delay:       delay,
		SuccessRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimulatedSender) Send(ctx context.Context, phone, content string) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.rng.Float64() < s.SuccessRate {
		return nil
	}
	return ErrNetworkTimeout
}
