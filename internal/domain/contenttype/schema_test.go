package contenttype

import (
	"reflect"
	"testing"
)

func TestSettersTrackChanges(t *testing.T) {
	s := New("article", "Article")
	if s.IsDirty() {
		t.Fatalf("new schema should start clean")
	}
	s.SetName("Article")
	if s.IsDirty() {
		t.Fatalf("setting the same value should not mark dirty")
	}
	s.SetName("News Article")
	s.SetParentID(7)
	want := []string{FieldName, FieldParentID}
	if got := s.DirtyProperties(); !reflect.DeepEqual(got, want) {
		t.Fatalf("dirty properties: want=%v got=%v", want, got)
	}
	if !s.IsPropertyDirty(FieldParentID) {
		t.Fatalf("expected ParentID dirty")
	}
	s.ResetDirtyProperties()
	if s.IsDirty() || len(s.DirtyProperties()) != 0 {
		t.Fatalf("reset should clear change set, got=%v", s.DirtyProperties())
	}
}

func TestSetDefaultTemplateAddsToAllowed(t *testing.T) {
	s := New("page", "Page")
	t1 := &Template{ID: 10, Alias: "t1"}
	s.SetDefaultTemplate(t1)
	if !s.IsAllowedTemplate(10) {
		t.Fatalf("default template should be added to allowed set")
	}
	if err := s.ValidateTemplates(); err != nil {
		t.Fatalf("ValidateTemplates: %v", err)
	}

	s.SetAllowedTemplates([]*Template{{ID: 11, Alias: "t2"}})
	if s.DefaultTemplate != nil {
		t.Fatalf("default should be cleared when removed from allowed set")
	}
}

func TestValidateTemplatesRejectsForeignDefault(t *testing.T) {
	s := New("page", "Page")
	s.AllowedTemplates = []*Template{{ID: 1}}
	s.DefaultTemplate = &Template{ID: 2}
	if err := s.ValidateTemplates(); err == nil {
		t.Fatalf("expected error for default outside allowed set")
	}
}

func TestValidateRejectsDuplicatePropertyAliases(t *testing.T) {
	s := New("page", "Page")
	s.AddPropertyGroup(NewPropertyGroup("Content", 0))
	if err := s.AddPropertyType(&PropertyType{Alias: "title"}, "Content"); err != nil {
		t.Fatalf("AddPropertyType: %v", err)
	}
	if err := s.AddPropertyType(&PropertyType{Alias: "Title"}, ""); err != nil {
		t.Fatalf("AddPropertyType ungrouped: %v", err)
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected duplicate alias error")
	}
	if err := s.AddPropertyType(&PropertyType{Alias: "x"}, "Missing"); err == nil {
		t.Fatalf("expected missing group error")
	}
}

func TestRemovePropertyGroupUngroupsTypes(t *testing.T) {
	s := New("page", "Page")
	g := NewPropertyGroup("Content", 0)
	g.ID = 5
	s.AddPropertyGroup(g)
	_ = s.AddPropertyType(&PropertyType{Alias: "body"}, "Content")
	if !s.RemovePropertyGroup("Content") {
		t.Fatalf("RemovePropertyGroup returned false")
	}
	if len(s.PropertyGroups) != 0 || len(s.NoGroupPropertyTypes) != 1 {
		t.Fatalf("groups=%d ungrouped=%d", len(s.PropertyGroups), len(s.NoGroupPropertyTypes))
	}
	if s.NoGroupPropertyTypes[0].GroupID != 0 {
		t.Fatalf("ungrouped type should have GroupID 0")
	}
}

func TestBuildPathAndPathIDs(t *testing.T) {
	if got := BuildPath("", 4); got != "-1,4" {
		t.Fatalf("root path: got=%s", got)
	}
	if got := BuildPath("-1,4", 9); got != "-1,4,9" {
		t.Fatalf("child path: got=%s", got)
	}
	if got := PathIDs("-1,4,9"); !reflect.DeepEqual(got, []int64{4, 9}) {
		t.Fatalf("PathIDs: got=%v", got)
	}
}

func TestSetAllowedContentTypesDedupes(t *testing.T) {
	s := New("page", "Page")
	s.SetAllowedContentTypes([]int64{3, 0, 3, 2, -1})
	if !reflect.DeepEqual(s.AllowedContentTypes, []int64{3, 2}) {
		t.Fatalf("allowed: got=%v", s.AllowedContentTypes)
	}
	if !s.AllowsChild(2) || s.AllowsChild(4) {
		t.Fatalf("AllowsChild mismatch")
	}
}
