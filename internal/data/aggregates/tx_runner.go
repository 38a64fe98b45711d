package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// TxRunner is the unit-of-work boundary. Callers open one transaction, pass
// the resulting dbctx.Context through every repository call, and the runner
// commits when fn returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.New(ctx, tx))
	})
}
