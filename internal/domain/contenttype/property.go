package contenttype

import "gorm.io/datatypes"

// PropertyGroup is a named, ordered tab of property types.
type PropertyGroup struct {
	ID            int64
	Name          string
	SortOrder     int
	PropertyTypes []*PropertyType
}

func NewPropertyGroup(name string, sortOrder int) *PropertyGroup {
	return &PropertyGroup{Name: name, SortOrder: sortOrder, PropertyTypes: []*PropertyType{}}
}

func (g *PropertyGroup) removePropertyType(alias string) bool {
	for i, pt := range g.PropertyTypes {
		if pt != nil && pt.Alias == alias {
			g.PropertyTypes = append(g.PropertyTypes[:i], g.PropertyTypes[i+1:]...)
			return true
		}
	}
	return false
}

// PropertyType describes one field of the schema. GroupID is 0 for
// ungrouped property types.
type PropertyType struct {
	ID                  int64
	GroupID             int64
	Alias               string
	Name                string
	Description         string
	DataTypeID          int64
	PropertyEditorAlias string
	Mandatory           bool
	ValidationRegExp    string
	SortOrder           int
	Config              datatypes.JSON
}

// Template is a weak reference to a template owned by the template store.
type Template struct {
	ID    int64
	Alias string
	Name  string
	Path  string
}
