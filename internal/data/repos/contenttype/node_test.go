package contenttype

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/schemastore/internal/data/repos/testutil"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

func TestNodeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.New(context.Background(), tx)

	repo := NewNodeRepo(db, testutil.Logger(t))

	max, err := repo.MaxSortOrder(dbc, nil, types.ObjectTypeDocumentType)
	if err != nil {
		t.Fatalf("MaxSortOrder(empty): %v", err)
	}
	if max != -1 {
		t.Fatalf("MaxSortOrder(empty): want=-1 got=%d", max)
	}

	root := &types.Node{Level: 1, Path: types.RootPath, SortOrder: 4, Text: "root",
		NodeObjectType: types.ObjectTypeDocumentType, CreatedAt: time.Now().UTC()}
	if err := repo.Create(dbc, root); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if root.ID <= 0 {
		t.Fatalf("Create: expected generated id")
	}

	child := &types.Node{ParentID: testutil.PtrInt64(root.ID), Level: 2, Path: types.RootPath, SortOrder: 7,
		Text: "child", NodeObjectType: types.ObjectTypeDocumentType, CreatedAt: time.Now().UTC()}
	if err := repo.Create(dbc, child); err != nil {
		t.Fatalf("Create(child): %v", err)
	}

	max, err = repo.MaxSortOrder(dbc, nil, types.ObjectTypeDocumentType)
	if err != nil {
		t.Fatalf("MaxSortOrder(root): %v", err)
	}
	if max != 4 {
		t.Fatalf("MaxSortOrder(root): want=4 got=%d", max)
	}
	max, err = repo.MaxSortOrder(dbc, testutil.PtrInt64(root.ID), types.ObjectTypeDocumentType)
	if err != nil {
		t.Fatalf("MaxSortOrder(child): %v", err)
	}
	if max != 7 {
		t.Fatalf("MaxSortOrder(child): want=7 got=%d", max)
	}

	if err := repo.UpdateFields(dbc, child.ID, map[string]interface{}{"text": "renamed"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByIDAndObjectType(dbc, child.ID, types.ObjectTypeDocumentType)
	if err != nil {
		t.Fatalf("GetByIDAndObjectType: %v", err)
	}
	if got == nil || got.Text != "renamed" {
		t.Fatalf("GetByIDAndObjectType: unexpected %+v", got)
	}
	got, err = repo.GetByIDAndObjectType(dbc, child.ID, types.ObjectTypeTemplate)
	if err != nil {
		t.Fatalf("GetByIDAndObjectType(template): %v", err)
	}
	if got != nil {
		t.Fatalf("GetByIDAndObjectType(template): expected nil")
	}

	existing, err := repo.ExistingIDs(dbc, []int64{child.ID, 987654}, types.ObjectTypeDocumentType)
	if err != nil {
		t.Fatalf("ExistingIDs: %v", err)
	}
	if len(existing) != 1 || existing[0] != child.ID {
		t.Fatalf("ExistingIDs: want=[%d] got=%v", child.ID, existing)
	}
	if existing, _ = repo.ExistingIDs(dbc, []int64{child.ID}, types.ObjectTypeTemplate); len(existing) != 0 {
		t.Fatalf("ExistingIDs(template): want none got=%v", existing)
	}

	if err := repo.DeleteByIDAndObjectType(dbc, child.ID, types.ObjectTypeTemplate); err != nil {
		t.Fatalf("DeleteByIDAndObjectType(template): %v", err)
	}
	if got, _ = repo.GetByID(dbc, child.ID); got == nil {
		t.Fatalf("delete with the wrong object type removed the node")
	}
	if err := repo.DeleteByIDAndObjectType(dbc, child.ID, types.ObjectTypeDocumentType); err != nil {
		t.Fatalf("DeleteByIDAndObjectType: %v", err)
	}
	got, err = repo.GetByID(dbc, child.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID: expected nil after delete")
	}
}

func TestNodeRepoRebaseDescendants(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.New(context.Background(), tx)

	repo := NewNodeRepo(db, testutil.Logger(t))
	mk := func(path string, level int) *types.Node {
		n := &types.Node{Level: level, Path: path, NodeObjectType: types.ObjectTypeDocumentType, CreatedAt: time.Now().UTC()}
		if err := repo.Create(dbc, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
		return n
	}
	deep := mk("-1,5,6,7", 3)
	sibling := mk("-1,55,8", 2)

	if err := repo.RebaseDescendants(dbc, "-1,5", "-1,9,5", 1); err != nil {
		t.Fatalf("RebaseDescendants: %v", err)
	}
	got, err := repo.GetByID(dbc, deep.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Path != "-1,9,5,6,7" || got.Level != 4 {
		t.Fatalf("RebaseDescendants: want=-1,9,5,6,7/4 got=%s/%d", got.Path, got.Level)
	}
	got, err = repo.GetByID(dbc, sibling.ID)
	if err != nil {
		t.Fatalf("GetByID(sibling): %v", err)
	}
	if got.Path != "-1,55,8" || got.Level != 2 {
		t.Fatalf("RebaseDescendants: unrelated node changed: %s/%d", got.Path, got.Level)
	}
}
