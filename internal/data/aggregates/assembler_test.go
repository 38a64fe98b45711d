package aggregates

import (
	"testing"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
)

func ptrInt64(v int64) *int64 { return &v }
func ptrBool(v bool) *bool    { return &v }

func TestSchemaFromRowsEmpty(t *testing.T) {
	s, ids, def := schemaFromRows(nil)
	if s != nil || ids != nil || def != 0 {
		t.Fatalf("empty rows: want nil schema, got=%v %v %d", s, ids, def)
	}
}

func TestSchemaFromRowsFirstRowWins(t *testing.T) {
	rows := []*types.ProjectionRow{
		{NodeID: 5, ParentID: ptrInt64(2), Level: 2, Path: "-1,2,5", Text: "Page", Alias: "page",
			Icon: "icon-doc", TemplateNodeID: ptrInt64(30), IsDefault: ptrBool(true)},
		{NodeID: 5, Text: "ignored", Alias: "ignored", TemplateNodeID: ptrInt64(10), IsDefault: ptrBool(false)},
		{NodeID: 5, Text: "ignored", Alias: "ignored", TemplateNodeID: ptrInt64(30), IsDefault: ptrBool(false)},
	}
	s, ids, def := schemaFromRows(rows)
	if s == nil {
		t.Fatalf("expected schema")
	}
	if s.ID != 5 || s.Alias != "page" || s.Name != "Page" || s.ParentID != 2 || s.Path != "-1,2,5" || s.Icon != "icon-doc" {
		t.Fatalf("structural fields: unexpected %+v", s)
	}
	if def != 30 {
		t.Fatalf("default: want=30 got=%d", def)
	}
	if len(ids) != 2 || ids[0] != 30 || ids[1] != 10 {
		t.Fatalf("template ids: want=[30 10] got=%v", ids)
	}
}

func TestSchemaFromRowsNoDefault(t *testing.T) {
	rows := []*types.ProjectionRow{
		{NodeID: 5, Alias: "page", TemplateNodeID: ptrInt64(10), IsDefault: ptrBool(false)},
		{NodeID: 5, Alias: "page", TemplateNodeID: ptrInt64(11), IsDefault: ptrBool(false)},
	}
	_, ids, def := schemaFromRows(rows)
	if def != 0 {
		t.Fatalf("default: want=0 got=%d", def)
	}
	if len(ids) != 2 {
		t.Fatalf("template ids: want=2 got=%v", ids)
	}

	_, ids, _ = schemaFromRows([]*types.ProjectionRow{{NodeID: 6, Alias: "bare"}})
	if len(ids) != 0 {
		t.Fatalf("no templates: want=[] got=%v", ids)
	}
}

func TestAttachProperties(t *testing.T) {
	s := types.New("page", "Page")
	attachProperties(s,
		[]*types.PropertyGroupRow{{ID: 1, Text: "Content", SortOrder: 0}},
		[]*types.PropertyTypeRow{
			{ID: 10, Alias: "title", PropertyTypeGroupID: ptrInt64(1)},
			{ID: 11, Alias: "loose"},
			{ID: 12, Alias: "orphan", PropertyTypeGroupID: ptrInt64(99)},
		})
	if len(s.PropertyGroups) != 1 || len(s.PropertyGroups[0].PropertyTypes) != 1 {
		t.Fatalf("groups: unexpected %+v", s.PropertyGroups)
	}
	if s.PropertyGroups[0].PropertyTypes[0].GroupID != 1 {
		t.Fatalf("grouped type: want GroupID=1")
	}
	if len(s.NoGroupPropertyTypes) != 2 {
		t.Fatalf("ungrouped: want=2 got=%d", len(s.NoGroupPropertyTypes))
	}
}
