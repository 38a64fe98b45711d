package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/aggregates"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// InjectedTxRunner counts units of work and injects failures at begin or
// commit. With DB set the body runs on a real transaction that is rolled
// back on any failure, so tests can assert nothing was written; without DB
// the body sees a Context with no Tx.
type InjectedTxRunner struct {
	DB *gorm.DB

	FailBegin  error
	FailCommit error

	mu            sync.Mutex
	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failCommit := r.FailBegin, r.FailCommit
	r.mu.Unlock()
	if failBegin != nil {
		return failBegin
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var tx *gorm.DB
	if r.DB != nil {
		tx = r.DB.WithContext(ctx).Begin()
		if tx.Error != nil {
			return tx.Error
		}
	}
	rollback := func(err error) error {
		if tx != nil {
			_ = tx.Rollback().Error
		}
		r.count(&r.RollbackCalls)
		return err
	}

	if fn != nil {
		if err := fn(dbctx.New(ctx, tx)); err != nil {
			return rollback(err)
		}
	}
	if failCommit != nil {
		return rollback(failCommit)
	}
	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return rollback(err)
		}
	}
	r.count(&r.CommitCalls)
	return nil
}

// Counts returns begin, commit and rollback totals.
func (r *InjectedTxRunner) Counts() (begin, commit, rollback int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.BeginCalls, r.CommitCalls, r.RollbackCalls
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
