package contenttype

import (
	"context"
	"testing"

	"github.com/yungbote/schemastore/internal/data/repos/testutil"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

func TestAllowedContentTypeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.New(context.Background(), tx)

	repo := NewAllowedContentTypeRepo(db, testutil.Logger(t))

	if err := repo.Create(dbc, []*types.AllowedContentTypeRow{
		{ParentContentTypeID: 10, AllowedContentTypeID: 30, SortOrder: 0},
		{ParentContentTypeID: 10, AllowedContentTypeID: 20, SortOrder: 1},
		{ParentContentTypeID: 5, AllowedContentTypeID: 20, SortOrder: 0},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	children, err := repo.GetChildIDs(dbc, 10)
	if err != nil {
		t.Fatalf("GetChildIDs: %v", err)
	}
	if len(children) != 2 || children[0] != 30 || children[1] != 20 {
		t.Fatalf("GetChildIDs: want=[30 20] got=%v", children)
	}

	parents, err := repo.GetParentIDs(dbc, 20)
	if err != nil {
		t.Fatalf("GetParentIDs: %v", err)
	}
	if len(parents) != 2 || parents[0] != 5 || parents[1] != 10 {
		t.Fatalf("GetParentIDs: want=[5 10] got=%v", parents)
	}

	if err := repo.DeleteByAllowedID(dbc, 20); err != nil {
		t.Fatalf("DeleteByAllowedID: %v", err)
	}
	children, err = repo.GetChildIDs(dbc, 10)
	if err != nil {
		t.Fatalf("GetChildIDs after delete: %v", err)
	}
	if len(children) != 1 || children[0] != 30 {
		t.Fatalf("GetChildIDs after delete: want=[30] got=%v", children)
	}

	if err := repo.DeleteByParentID(dbc, 10); err != nil {
		t.Fatalf("DeleteByParentID: %v", err)
	}
	children, err = repo.GetChildIDs(dbc, 10)
	if err != nil {
		t.Fatalf("GetChildIDs after parent delete: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("GetChildIDs after parent delete: want=[] got=%v", children)
	}
}
