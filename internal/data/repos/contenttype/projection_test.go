package contenttype

import (
	"context"
	"testing"

	"github.com/yungbote/schemastore/internal/data/repos/testutil"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/query"
)

func TestProjectionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.New(ctx, tx)

	repo := NewProjectionRepo(db, testutil.Logger(t))

	page := testutil.SeedSchemaNode(t, ctx, tx, "page")
	blog := testutil.SeedSchemaNode(t, ctx, tx, "blog")
	t1 := testutil.SeedTemplateNode(t, ctx, tx, "t1")
	t2 := testutil.SeedTemplateNode(t, ctx, tx, "t2")
	t3 := testutil.SeedTemplateNode(t, ctx, tx, "t3")
	testutil.SeedDocumentType(t, ctx, tx, page, t1, false)
	testutil.SeedDocumentType(t, ctx, tx, page, t3, true)
	testutil.SeedDocumentType(t, ctx, tx, page, t2, false)

	rows, err := repo.RowsByID(dbc, page)
	if err != nil {
		t.Fatalf("RowsByID: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("RowsByID: want=3 got=%d", len(rows))
	}
	if rows[0].TemplateNodeID == nil || *rows[0].TemplateNodeID != t3 {
		t.Fatalf("RowsByID: default row should come first, got=%v", rows[0].TemplateNodeID)
	}
	if rows[0].IsDefault == nil || !*rows[0].IsDefault {
		t.Fatalf("RowsByID: first row should be the default")
	}
	if rows[0].Alias != "page" || rows[0].NodeID != page {
		t.Fatalf("RowsByID: unexpected structural fields: %+v", rows[0])
	}

	rows, err = repo.RowsByID(dbc, blog)
	if err != nil {
		t.Fatalf("RowsByID(blog): %v", err)
	}
	if len(rows) != 1 || rows[0].TemplateNodeID != nil {
		t.Fatalf("RowsByID(blog): want one row without template, got=%+v", rows)
	}

	rows, err = repo.RowsByID(dbc, t1)
	if err != nil {
		t.Fatalf("RowsByID(template): %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("RowsByID(template): template nodes must not project, got=%d", len(rows))
	}

	ids, err := repo.IDs(dbc)
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != page || ids[1] != blog {
		t.Fatalf("IDs: want=[%d %d] got=%v", page, blog, ids)
	}

	ids, err = repo.IDs(dbc, query.AliasEquals("blog"))
	if err != nil {
		t.Fatalf("IDs(alias): %v", err)
	}
	if len(ids) != 1 || ids[0] != blog {
		t.Fatalf("IDs(alias): want=[%d] got=%v", blog, ids)
	}

	ids, err = repo.IDs(dbc, query.UsesTemplate(t2))
	if err != nil {
		t.Fatalf("IDs(template): %v", err)
	}
	if len(ids) != 1 || ids[0] != page {
		t.Fatalf("IDs(template): want=[%d] got=%v", page, ids)
	}
}
