package aggregates

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// CASGuard provides optimistic concurrency helpers for aggregate writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	t := dbc.DB(g.db)
	if t == nil {
		return nil, ValidationError("missing db transaction context")
	}
	return t, nil
}

// UpdateIfUnmodifiedSince applies updates to the row keyed by keyColumn=id
// only when its updated_at is not later than since. It reports whether a row
// was written.
func (g CASGuard) UpdateIfUnmodifiedSince(dbc dbctx.Context, table, keyColumn string, id int64, since time.Time, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	keyColumn = strings.TrimSpace(keyColumn)
	if table == "" || keyColumn == "" || id <= 0 {
		return false, ValidationError("table, key column and id are required for UpdateIfUnmodifiedSince")
	}
	if since.IsZero() {
		return false, ValidationError("since must be set for UpdateIfUnmodifiedSince")
	}
	res := db.Table(table).
		Where(keyColumn+" = ? AND updated_at <= ?", id, since.UTC()).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a typed conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(strings.TrimSpace(message))
}
