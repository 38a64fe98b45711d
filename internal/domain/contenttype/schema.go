package contenttype

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tracked field names reported by DirtyProperties.
const (
	FieldName                = "Name"
	FieldAlias               = "Alias"
	FieldIcon                = "Icon"
	FieldThumbnail           = "Thumbnail"
	FieldDescription         = "Description"
	FieldIsContainer         = "IsContainer"
	FieldAllowAtRoot         = "AllowAtRoot"
	FieldParentID            = "ParentID"
	FieldSortOrder           = "SortOrder"
	FieldTrashed             = "Trashed"
	FieldPropertyGroups      = "PropertyGroups"
	FieldPropertyTypes       = "PropertyTypes"
	FieldAllowedContentTypes = "AllowedContentTypes"
	FieldAllowedTemplates    = "AllowedTemplates"
	FieldDefaultTemplate     = "DefaultTemplate"
)

// ContentTypeSchema is the aggregate root for one content-type definition.
//
// Fields may be assigned directly while building a new schema; mutations of
// a loaded schema should go through the setters so the change set stays
// accurate.
type ContentTypeSchema struct {
	ID        int64
	UniqueID  uuid.UUID
	ParentID  int64
	Level     int
	Path      string
	SortOrder int
	CreatorID int64
	Trashed   bool

	Name        string
	Alias       string
	Icon        string
	Thumbnail   string
	Description string
	IsContainer bool
	AllowAtRoot bool

	CreateDate time.Time
	UpdateDate time.Time

	PropertyGroups       []*PropertyGroup
	NoGroupPropertyTypes []*PropertyType

	AllowedContentTypes []int64
	AllowedTemplates    []*Template
	DefaultTemplate     *Template

	// AllowedParents are the schemas that allow this one as a child, sorted
	// by id. Entries may point back into the graph being loaded.
	AllowedParents []*ContentTypeSchema

	changes map[string]struct{}
}

// New returns a transient schema with the given alias and name.
func New(alias, name string) *ContentTypeSchema {
	return &ContentTypeSchema{
		Alias:                strings.TrimSpace(alias),
		Name:                 strings.TrimSpace(name),
		PropertyGroups:       []*PropertyGroup{},
		NoGroupPropertyTypes: []*PropertyType{},
		AllowedContentTypes:  []int64{},
		AllowedTemplates:     []*Template{},
		AllowedParents:       []*ContentTypeSchema{},
	}
}

func (s *ContentTypeSchema) HasIdentity() bool { return s != nil && s.ID > 0 }

func (s *ContentTypeSchema) markDirty(field string) {
	if s.changes == nil {
		s.changes = map[string]struct{}{}
	}
	s.changes[field] = struct{}{}
}

func (s *ContentTypeSchema) IsDirty() bool { return len(s.changes) > 0 }

func (s *ContentTypeSchema) IsPropertyDirty(field string) bool {
	_, ok := s.changes[field]
	return ok
}

// DirtyProperties returns the changed field names in sorted order.
func (s *ContentTypeSchema) DirtyProperties() []string {
	out := make([]string, 0, len(s.changes))
	for k := range s.changes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *ContentTypeSchema) ResetDirtyProperties() {
	s.changes = nil
}

func (s *ContentTypeSchema) SetName(v string) {
	if s.Name != v {
		s.Name = v
		s.markDirty(FieldName)
	}
}

func (s *ContentTypeSchema) SetAlias(v string) {
	v = strings.TrimSpace(v)
	if s.Alias != v {
		s.Alias = v
		s.markDirty(FieldAlias)
	}
}

func (s *ContentTypeSchema) SetIcon(v string) {
	if s.Icon != v {
		s.Icon = v
		s.markDirty(FieldIcon)
	}
}

func (s *ContentTypeSchema) SetThumbnail(v string) {
	if s.Thumbnail != v {
		s.Thumbnail = v
		s.markDirty(FieldThumbnail)
	}
}

func (s *ContentTypeSchema) SetDescription(v string) {
	if s.Description != v {
		s.Description = v
		s.markDirty(FieldDescription)
	}
}

func (s *ContentTypeSchema) SetIsContainer(v bool) {
	if s.IsContainer != v {
		s.IsContainer = v
		s.markDirty(FieldIsContainer)
	}
}

func (s *ContentTypeSchema) SetAllowAtRoot(v bool) {
	if s.AllowAtRoot != v {
		s.AllowAtRoot = v
		s.markDirty(FieldAllowAtRoot)
	}
}

func (s *ContentTypeSchema) SetSortOrder(v int) {
	if s.SortOrder != v {
		s.SortOrder = v
		s.markDirty(FieldSortOrder)
	}
}

func (s *ContentTypeSchema) SetTrashed(v bool) {
	if s.Trashed != v {
		s.Trashed = v
		s.markDirty(FieldTrashed)
	}
}

// SetParentID moves the schema; the repository recomputes Path on save.
func (s *ContentTypeSchema) SetParentID(parentID int64) {
	if parentID < 0 {
		parentID = 0
	}
	if s.ParentID != parentID {
		s.ParentID = parentID
		s.markDirty(FieldParentID)
	}
}

func (s *ContentTypeSchema) SetAllowedContentTypes(ids []int64) {
	s.AllowedContentTypes = dedupeIDs(ids)
	s.markDirty(FieldAllowedContentTypes)
}

// SetAllowedTemplates replaces the allowed set. A default template that is no
// longer allowed is cleared.
func (s *ContentTypeSchema) SetAllowedTemplates(templates []*Template) {
	s.AllowedTemplates = templates
	s.markDirty(FieldAllowedTemplates)
	if s.DefaultTemplate != nil && !s.IsAllowedTemplate(s.DefaultTemplate.ID) {
		s.DefaultTemplate = nil
		s.markDirty(FieldDefaultTemplate)
	}
}

// SetDefaultTemplate sets the default, adding it to the allowed set when
// missing. nil clears the default.
func (s *ContentTypeSchema) SetDefaultTemplate(t *Template) {
	s.DefaultTemplate = t
	s.markDirty(FieldDefaultTemplate)
	if t != nil && !s.IsAllowedTemplate(t.ID) {
		s.AllowedTemplates = append(s.AllowedTemplates, t)
		s.markDirty(FieldAllowedTemplates)
	}
}

func (s *ContentTypeSchema) IsAllowedTemplate(id int64) bool {
	for _, t := range s.AllowedTemplates {
		if t != nil && t.ID == id {
			return true
		}
	}
	return false
}

// AllowedTemplateIDs returns non-nil allowed template ids in declared order.
func (s *ContentTypeSchema) AllowedTemplateIDs() []int64 {
	out := make([]int64, 0, len(s.AllowedTemplates))
	for _, t := range s.AllowedTemplates {
		if t != nil && t.ID > 0 {
			out = append(out, t.ID)
		}
	}
	return out
}

func (s *ContentTypeSchema) DefaultTemplateID() int64 {
	if s.DefaultTemplate == nil {
		return 0
	}
	return s.DefaultTemplate.ID
}

func (s *ContentTypeSchema) AddPropertyGroup(g *PropertyGroup) {
	if g == nil {
		return
	}
	if g.PropertyTypes == nil {
		g.PropertyTypes = []*PropertyType{}
	}
	s.PropertyGroups = append(s.PropertyGroups, g)
	s.markDirty(FieldPropertyGroups)
}

// RemovePropertyGroup drops the named group; its property types become
// ungrouped rather than being deleted.
func (s *ContentTypeSchema) RemovePropertyGroup(name string) bool {
	for i, g := range s.PropertyGroups {
		if g == nil || g.Name != name {
			continue
		}
		for _, pt := range g.PropertyTypes {
			if pt != nil {
				pt.GroupID = 0
				s.NoGroupPropertyTypes = append(s.NoGroupPropertyTypes, pt)
			}
		}
		s.PropertyGroups = append(s.PropertyGroups[:i], s.PropertyGroups[i+1:]...)
		s.markDirty(FieldPropertyGroups)
		s.markDirty(FieldPropertyTypes)
		return true
	}
	return false
}

// AddPropertyType appends pt to the named group, or to the ungrouped list
// when groupName is empty. It fails when the group does not exist.
func (s *ContentTypeSchema) AddPropertyType(pt *PropertyType, groupName string) error {
	if pt == nil {
		return nil
	}
	if groupName == "" {
		pt.GroupID = 0
		s.NoGroupPropertyTypes = append(s.NoGroupPropertyTypes, pt)
		s.markDirty(FieldPropertyTypes)
		return nil
	}
	g := s.PropertyGroup(groupName)
	if g == nil {
		return fmt.Errorf("property group %q not found", groupName)
	}
	pt.GroupID = g.ID
	g.PropertyTypes = append(g.PropertyTypes, pt)
	s.markDirty(FieldPropertyTypes)
	return nil
}

func (s *ContentTypeSchema) RemovePropertyType(alias string) bool {
	for i, pt := range s.NoGroupPropertyTypes {
		if pt != nil && pt.Alias == alias {
			s.NoGroupPropertyTypes = append(s.NoGroupPropertyTypes[:i], s.NoGroupPropertyTypes[i+1:]...)
			s.markDirty(FieldPropertyTypes)
			return true
		}
	}
	for _, g := range s.PropertyGroups {
		if g != nil && g.removePropertyType(alias) {
			s.markDirty(FieldPropertyTypes)
			return true
		}
	}
	return false
}

func (s *ContentTypeSchema) PropertyGroup(name string) *PropertyGroup {
	for _, g := range s.PropertyGroups {
		if g != nil && g.Name == name {
			return g
		}
	}
	return nil
}

// PropertyTypes returns grouped property types first, then ungrouped ones.
func (s *ContentTypeSchema) PropertyTypes() []*PropertyType {
	out := []*PropertyType{}
	for _, g := range s.PropertyGroups {
		if g == nil {
			continue
		}
		for _, pt := range g.PropertyTypes {
			if pt != nil {
				out = append(out, pt)
			}
		}
	}
	for _, pt := range s.NoGroupPropertyTypes {
		if pt != nil {
			out = append(out, pt)
		}
	}
	return out
}

func (s *ContentTypeSchema) PropertyType(alias string) *PropertyType {
	for _, pt := range s.PropertyTypes() {
		if pt.Alias == alias {
			return pt
		}
	}
	return nil
}

func (s *ContentTypeSchema) AllowsChild(id int64) bool {
	for _, c := range s.AllowedContentTypes {
		if c == id {
			return true
		}
	}
	return false
}

func (s *ContentTypeSchema) AllowedParent(id int64) *ContentTypeSchema {
	for _, p := range s.AllowedParents {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// AllowedParentIDs returns the ids of AllowedParents in order.
func (s *ContentTypeSchema) AllowedParentIDs() []int64 {
	out := make([]int64, 0, len(s.AllowedParents))
	for _, p := range s.AllowedParents {
		if p != nil {
			out = append(out, p.ID)
		}
	}
	return out
}

// Validate checks the invariants enforced before any write.
func (s *ContentTypeSchema) Validate() error {
	if strings.TrimSpace(s.Alias) == "" {
		return fmt.Errorf("alias is required")
	}
	seen := map[string]struct{}{}
	for _, pt := range s.PropertyTypes() {
		alias := strings.ToLower(strings.TrimSpace(pt.Alias))
		if alias == "" {
			return fmt.Errorf("property type alias is required")
		}
		if _, dup := seen[alias]; dup {
			return fmt.Errorf("duplicate property type alias %q", pt.Alias)
		}
		seen[alias] = struct{}{}
	}
	groups := map[string]struct{}{}
	for _, g := range s.PropertyGroups {
		if g == nil {
			continue
		}
		if _, dup := groups[g.Name]; dup {
			return fmt.Errorf("duplicate property group %q", g.Name)
		}
		groups[g.Name] = struct{}{}
	}
	if s.ParentID != 0 && s.ParentID == s.ID {
		return fmt.Errorf("schema cannot be its own parent")
	}
	return nil
}

// ValidateTemplates reports a default template missing from the allowed set.
func (s *ContentTypeSchema) ValidateTemplates() error {
	if s.DefaultTemplate == nil {
		return nil
	}
	if s.DefaultTemplate.ID <= 0 {
		return fmt.Errorf("default template has no identity")
	}
	if !s.IsAllowedTemplate(s.DefaultTemplate.ID) {
		return fmt.Errorf("default template %d is not in the allowed template set", s.DefaultTemplate.ID)
	}
	return nil
}

// BuildPath joins a parent path and an id.
func BuildPath(parentPath string, id int64) string {
	parentPath = strings.TrimSpace(parentPath)
	if parentPath == "" {
		parentPath = RootPath
	}
	return parentPath + "," + strconv.FormatInt(id, 10)
}

// PathIDs parses a path into ids, skipping the root marker.
func PathIDs(path string) []int64 {
	out := []int64{}
	for _, part := range strings.Split(path, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := map[int64]struct{}{}
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
