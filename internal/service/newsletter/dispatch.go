package newsletter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// ErrDispatchRunning is returned when another dispatch run holds the
// guard lock.
var ErrDispatchRunning = errors.New("a newsletter dispatch is already running")

// Lister supplies the confirmed-subscriber snapshot. Implemented by the
// postgres subscriber repository.
type Lister interface {
	ListConfirmed(ctx context.Context) ([]domain.Recipient, error)
}

// Sender delivers one newsletter email. Implemented by emailclient.Client.
type Sender interface {
	SendTestEmail(ctx context.Context, recipient domain.Email) error
}

// Failure records one recipient that could not be delivered to.
type Failure struct {
	SubscriberID string       `json:"subscriber_id"`
	Email        domain.Email `json:"email"`
	Error        string       `json:"error"`
}

// Report aggregates the outcome of one dispatch run. Every recipient in
// the snapshot appears exactly once, either in Sent or in Failures.
type Report struct {
	Attempted int       `json:"attempted"`
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Dispatcher runs newsletter sends against the confirmed-subscriber
// snapshot.
type Dispatcher struct {
	lister  Lister
	sender  Sender
	workers int
	guard   Guard // optional; nil means runs may overlap
}

// Guard serializes dispatch runs across processes. See RedisGuard.
type Guard interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// NewDispatcher creates a dispatcher. workers bounds send parallelism and
// is clamped to at least 1; guard may be nil.
func NewDispatcher(lister Lister, sender Sender, workers int, guard Guard) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{lister: lister, sender: sender, workers: workers, guard: guard}
}

// Dispatch loads the confirmed snapshot and sends to each recipient once.
// The returned error is non-nil only when the run could not happen at all:
// the listing failed or another run holds the guard. Per-recipient
// transport failures live in the report.
func (d *Dispatcher) Dispatch(ctx context.Context) (*Report, error) {
	if d.guard != nil {
		ok, err := d.guard.Acquire(ctx)
		if err != nil {
			// Guard backend down: overlapping runs are preferable to no
			// runs at all.
			logger.Warn("dispatch guard unavailable, proceeding unguarded", "err", err)
		} else if !ok {
			return nil, ErrDispatchRunning
		} else {
			defer func() {
				if err := d.guard.Release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("dispatch guard release failed", "err", err)
				}
			}()
		}
	}

	recipients, err := d.lister.ListConfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list confirmed subscribers: %w", err)
	}

	report := &Report{Attempted: len(recipients)}
	if len(recipients) == 0 {
		logger.Info("dispatch finished", "attempted", 0)
		return report, nil
	}

	jobs := make(chan domain.Recipient)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rcpt := range jobs {
				err := d.sender.SendTestEmail(ctx, rcpt.Email)
				mu.Lock()
				if err != nil {
					report.Failed++
					report.Failures = append(report.Failures, Failure{
						SubscriberID: rcpt.SubscriberID,
						Email:        rcpt.Email,
						Error:        err.Error(),
					})
				} else {
					report.Sent++
				}
				mu.Unlock()
				if err != nil {
					logger.Warn("newsletter send failed",
						"subscriber_id", rcpt.SubscriberID,
						"email", rcpt.Email.String(), "err", err)
				}
			}
		}()
	}

	for _, rcpt := range recipients {
		jobs <- rcpt
	}
	close(jobs)
	wg.Wait()

	logger.Info("dispatch finished",
		"attempted", report.Attempted, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}
