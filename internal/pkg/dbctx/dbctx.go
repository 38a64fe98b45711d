package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// The transaction is the caller's unit of work; repos never commit it.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New returns a Context bound to tx (which may be nil).
func New(ctx context.Context, tx *gorm.DB) Context {
	return Context{Ctx: ctx, Tx: tx}
}

// DB returns the transaction when present, otherwise fallback, scoped to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = fallback
	}
	if t == nil {
		return nil
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return t.WithContext(ctx)
}

// InTx reports whether a unit-of-work transaction is attached.
func (c Context) InTx() bool { return c.Tx != nil }
