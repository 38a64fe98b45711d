package template

import (
	"context"
	"testing"

	"github.com/yungbote/schemastore/internal/data/repos/testutil"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

func TestTemplateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.New(context.Background(), tx)

	repo := NewTemplateRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, "home", "Home", "<html/>")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID <= 0 || created.Alias != "home" || created.Name != "Home" {
		t.Fatalf("Create: unexpected %+v", created)
	}

	got, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Alias != "home" || got.Path != created.Path {
		t.Fatalf("GetByID: unexpected %+v", got)
	}

	got, err = repo.GetByAlias(dbc, "home")
	if err != nil {
		t.Fatalf("GetByAlias: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("GetByAlias: unexpected %+v", got)
	}

	if _, err := repo.Create(dbc, "  ", "blank", ""); err == nil {
		t.Fatalf("Create: expected error for blank alias")
	}

	if err := repo.Delete(dbc, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID after delete: expected nil")
	}
}
