package executor

import (
	"context"
	"fmt"

	"github.com/ms584/Q-Net/internal/evaluate"
	"github.com/ms584/Q-Net/internal/ir"
)

// Executor runs a circuit for a number of shots.
//
// The returned counts must sum exactly to shots, and keys must be
// fixed-width bitstrings over the circuit's registers with the most
// recently declared register leftmost. Execute blocks until the run
// completes or ctx is done.
type Executor interface {
	Name() string
	Execute(ctx context.Context, c *ir.Circuit, shots int64) (ir.Counts, error)
}

// Checked wraps inner so that every call honours the executor contract.
func Checked(inner Executor) Executor {
	if c, ok := inner.(*checked); ok {
		return c
	}
	return &checked{inner: inner}
}

type checked struct {
	inner Executor
}

func (c *checked) Name() string {
	return c.inner.Name()
}

func (c *checked) Execute(ctx context.Context, circ *ir.Circuit, shots int64) (ir.Counts, error) {
	if shots <= 0 {
		return nil, &Error{
			Code:     ErrCodeInvalidShots,
			Executor: c.inner.Name(),
			Err:      fmt.Errorf("shots must be positive, got %d", shots),
		}
	}

	counts, err := c.inner.Execute(ctx, circ, shots)
	if err != nil {
		return nil, &Error{Code: ErrCodeExecutorFailure, Executor: c.inner.Name(), Err: err}
	}

	normalized, err := evaluate.Normalize(counts)
	if err != nil {
		return nil, &Error{Code: ErrCodeExecutorFailure, Executor: c.inner.Name(), Err: err}
	}
	if err := evaluate.CheckConservation(normalized, shots); err != nil {
		return nil, &Error{Code: ErrCodeExecutorFailure, Executor: c.inner.Name(), Err: err}
	}
	return normalized, nil
}
