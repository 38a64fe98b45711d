package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/schemastore/internal/data/repos/testutil"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict error, got=%v", err)
	}
}

func TestUpdateIfUnmodifiedSince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.New(ctx, tx)

	id := testutil.SeedSchemaNode(t, ctx, tx, "guarded")
	var row types.ContentTypeRow
	if err := tx.Where("node_id = ?", id).Take(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}

	g := NewCASGuard(db)
	ok, err := g.UpdateIfUnmodifiedSince(dbc, "content_type", "node_id", id, row.UpdatedAt,
		map[string]any{"icon": "a", "updated_at": row.UpdatedAt.Add(time.Second)})
	if err != nil {
		t.Fatalf("UpdateIfUnmodifiedSince: %v", err)
	}
	if !ok {
		t.Fatalf("UpdateIfUnmodifiedSince: expected first write to pass")
	}

	ok, err = g.UpdateIfUnmodifiedSince(dbc, "content_type", "node_id", id, row.UpdatedAt,
		map[string]any{"icon": "b"})
	if err != nil {
		t.Fatalf("UpdateIfUnmodifiedSince(stale): %v", err)
	}
	if ok {
		t.Fatalf("UpdateIfUnmodifiedSince(stale): expected guard to reject")
	}

	if _, err := g.UpdateIfUnmodifiedSince(dbc, "content_type", "node_id", id, time.Time{}, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero since: expected validation error, got=%v", err)
	}
}
