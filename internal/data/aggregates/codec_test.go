package aggregates

import (
	"testing"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
)

func TestCodecPreservesCycles(t *testing.T) {
	a := types.New("a", "A")
	a.ID = 1
	b := types.New("b", "B")
	b.ID = 2
	a.AllowedContentTypes = []int64{2}
	b.AllowedContentTypes = []int64{1}
	a.AllowedParents = []*types.ContentTypeSchema{b}
	b.AllowedParents = []*types.ContentTypeSchema{a}

	tpl := &types.Template{ID: 40, Alias: "home"}
	a.AllowedTemplates = []*types.Template{{ID: 41}, tpl}
	a.DefaultTemplate = tpl
	if err := a.AddPropertyType(&types.PropertyType{Alias: "title"}, ""); err != nil {
		t.Fatalf("AddPropertyType: %v", err)
	}

	raw, err := encodeSchema(a)
	if err != nil {
		t.Fatalf("encodeSchema: %v", err)
	}
	got, err := decodeSchema(raw)
	if err != nil {
		t.Fatalf("decodeSchema: %v", err)
	}
	if got.ID != 1 || got.Alias != "a" {
		t.Fatalf("root: unexpected %+v", got)
	}
	if len(got.AllowedParents) != 1 || got.AllowedParents[0].ID != 2 {
		t.Fatalf("parents: want=[2] got=%v", got.AllowedParentIDs())
	}
	back := got.AllowedParents[0].AllowedParents
	if len(back) != 1 || back[0] != got {
		t.Fatalf("cycle: expected B's parent to be the decoded root pointer")
	}
	if got.DefaultTemplate == nil || got.DefaultTemplate != got.AllowedTemplates[1] {
		t.Fatalf("default template must point into the allowed set")
	}
	if got.PropertyType("title") == nil {
		t.Fatalf("property types lost in snapshot")
	}
	if got.IsDirty() {
		t.Fatalf("decoded schema must have an empty change set, got=%v", got.DirtyProperties())
	}
}

func TestDecodeSchemaRejectsBrokenSnapshot(t *testing.T) {
	if _, err := decodeSchema([]byte(`{"root_id":1,"schemas":[{"id":1,"allowed_parent_ids":[9]}]}`)); err == nil {
		t.Fatalf("expected error for missing parent record")
	}
	if _, err := decodeSchema([]byte(`{"root_id":3,"schemas":[]}`)); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
