package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/legal_queries/backend/internal/utils"
)

const DefaultFrom = "Sistema de Gestión <onboarding@resend.dev>"

// Dispatcher delivers the lawyer email and then a confirmation copy to every
// supervisor. A failed lawyer email aborts; failed confirmations are only logged.
type Dispatcher struct {
	Sender        Sender
	From          string
	Confirmations []string
	MaxRetries    int
	RetryDelay    time.Duration
	Logger        zerolog.Logger
	Now           func() time.Time
}

func (d *Dispatcher) Notify(ctx context.Context, req Request) (Result, error) {
	if len(req.Queries) == 0 {
		return Result{}, ErrNoQueries
	}
	from := d.From
	if from == "" {
		from = DefaultFrom
	}

	email, err := RenderLawyerEmail(from, req)
	if err != nil {
		return Result{}, err
	}
	if err := d.send(ctx, email); err != nil {
		return Result{}, fmt.Errorf("notify %s: %w", req.LawyerEmail, err)
	}
	d.Logger.Info().
		Str("lawyer_email", req.LawyerEmail).
		Int("queries", len(req.Queries)).
		Bool("automatic", req.IsAutomatic).
		Msg("lawyer notified")

	res := Result{
		LawyerEmail:        req.LawyerEmail,
		ConfirmationEmails: []string{},
		Urgent:             len(req.Urgent()),
		Total:              len(req.Queries),
	}
	sentAt := d.now()
	for _, to := range d.Confirmations {
		c, err := RenderConfirmation(from, to, req, sentAt)
		if err != nil {
			return res, err
		}
		if err := d.send(ctx, c); err != nil {
			d.Logger.Warn().Err(err).Str("to", to).Msg("confirmation email failed")
			continue
		}
		res.ConfirmationEmails = append(res.ConfirmationEmails, to)
	}
	return res, nil
}

func (d *Dispatcher) send(ctx context.Context, e Email) error {
	var err error
	for attempt := 0; attempt <= d.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := utils.Backoff(d.RetryDelay, attempt)
			var rl RateLimitError
			if errors.As(err, &rl) && rl.RetryAfter > wait {
				wait = rl.RetryAfter
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err = d.Sender.Send(ctx, e)
		if err == nil || !retryable(err) {
			return err
		}
		d.Logger.Debug().Err(err).Int("attempt", attempt+1).Strs("to", e.To).Msg("email send failed")
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
