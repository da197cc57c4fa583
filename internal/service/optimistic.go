package service

import (
	"context"
	"errors"
)

// optimisticTxn applies a mutation locally before confirming it remotely,
// restoring the prior state if the remote call fails. Prev is captured
// before Apply runs; Rollback receives it untouched.
type optimisticTxn[S any] struct {
	Snapshot func(ctx context.Context) (S, error)
	Apply    func(ctx context.Context) error
	Remote   func(ctx context.Context) error
	Rollback func(ctx context.Context, prev S) error
}

// Run executes the transaction. A failed rollback is joined onto the remote
// error so neither is lost.
func (t optimisticTxn[S]) Run(ctx context.Context) error {
	prev, err := t.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := t.Apply(ctx); err != nil {
		return err
	}
	if err := t.Remote(ctx); err != nil {
		if rbErr := t.Rollback(ctx, prev); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}
