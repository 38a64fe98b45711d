package schemafile

import (
	"sort"
	"strings"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

type Exporter struct {
	Schemas domainagg.ContentTypeRepository
}

// Export builds a document for the given schema ids, or for every schema
// when none are given. Schemas are ordered by level so parents precede
// their children on re-import.
func (ex *Exporter) Export(dbc dbctx.Context, ids ...int64) (*Document, error) {
	var schemas []*contenttype.ContentTypeSchema
	for s, err := range ex.Schemas.GetAll(dbc, ids...) {
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	sort.SliceStable(schemas, func(i, j int) bool {
		if schemas[i].Level != schemas[j].Level {
			return schemas[i].Level < schemas[j].Level
		}
		return schemas[i].ID < schemas[j].ID
	})

	aliases := map[int64]string{}
	for _, s := range schemas {
		aliases[s.ID] = s.Alias
	}
	aliasOf := func(id int64) (string, error) {
		if a, ok := aliases[id]; ok {
			return a, nil
		}
		s, err := ex.Schemas.Get(dbc, id)
		if err != nil || s == nil {
			return "", err
		}
		aliases[id] = s.Alias
		return s.Alias, nil
	}

	doc := &Document{Schemas: make([]Schema, 0, len(schemas))}
	seenTemplates := map[int64]struct{}{}
	for _, s := range schemas {
		sd, err := FromSchema(s, aliasOf)
		if err != nil {
			return nil, err
		}
		doc.Schemas = append(doc.Schemas, sd)
		for _, t := range s.AllowedTemplates {
			if t == nil {
				continue
			}
			if _, ok := seenTemplates[t.ID]; ok {
				continue
			}
			seenTemplates[t.ID] = struct{}{}
			doc.Templates = append(doc.Templates, Template{Alias: t.Alias, Name: t.Name})
		}
	}
	return doc, nil
}

// FromSchema converts a loaded schema. aliasOf resolves schema ids to
// aliases; ids that resolve to "" are left out.
func FromSchema(s *contenttype.ContentTypeSchema, aliasOf func(int64) (string, error)) (Schema, error) {
	sd := Schema{
		Alias:       s.Alias,
		Name:        s.Name,
		Icon:        s.Icon,
		Thumbnail:   s.Thumbnail,
		Description: s.Description,
		IsContainer: s.IsContainer,
		AllowAtRoot: s.AllowAtRoot,
	}
	if s.ParentID > 0 {
		alias, err := aliasOf(s.ParentID)
		if err != nil {
			return Schema{}, err
		}
		sd.Parent = alias
	}
	for _, id := range s.AllowedContentTypes {
		alias, err := aliasOf(id)
		if err != nil {
			return Schema{}, err
		}
		if alias != "" {
			sd.AllowedChildren = append(sd.AllowedChildren, alias)
		}
	}
	for _, t := range s.AllowedTemplates {
		if t != nil {
			sd.Templates = append(sd.Templates, t.Alias)
		}
	}
	if s.DefaultTemplate != nil {
		sd.DefaultTemplate = s.DefaultTemplate.Alias
	}
	for _, g := range s.PropertyGroups {
		if g == nil {
			continue
		}
		gd := Group{Name: g.Name, SortOrder: g.SortOrder}
		for _, pt := range g.PropertyTypes {
			if pt != nil {
				gd.Properties = append(gd.Properties, propertyFromDomain(pt))
			}
		}
		sd.Groups = append(sd.Groups, gd)
	}
	for _, pt := range s.NoGroupPropertyTypes {
		if pt != nil {
			sd.Properties = append(sd.Properties, propertyFromDomain(pt))
		}
	}
	return sd, nil
}

// Summary is a flat listing row for one schema.
type Summary struct {
	ID        int64
	Alias     string
	Name      string
	Parent    string
	Templates string
}

func Summarize(s *contenttype.ContentTypeSchema, parentAlias string) Summary {
	tpl := make([]string, 0, len(s.AllowedTemplates))
	for _, t := range s.AllowedTemplates {
		if t == nil {
			continue
		}
		name := t.Alias
		if s.DefaultTemplate != nil && s.DefaultTemplate.ID == t.ID {
			name += "*"
		}
		tpl = append(tpl, name)
	}
	return Summary{ID: s.ID, Alias: s.Alias, Name: s.Name, Parent: parentAlias, Templates: strings.Join(tpl, ",")}
}
