package schemafile

import (
	"fmt"
	"slices"
	"strings"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// TemplateStore is the subset of the template repository used by import.
type TemplateStore interface {
	Create(dbc dbctx.Context, alias, name, design string) (*contenttype.Template, error)
	GetByAlias(dbc dbctx.Context, alias string) (*contenttype.Template, error)
}

type Importer struct {
	Schemas   domainagg.ContentTypeRepository
	Templates TemplateStore
	Log       *logger.Logger

	// CreateTemplates inserts templates referenced by alias that do not
	// exist yet instead of failing the import.
	CreateTemplates bool
}

type ImportResult struct {
	Created          []string
	Updated          []string
	TemplatesCreated []string
}

// Import upserts every schema of doc by alias. Parents must exist already or
// appear earlier in the document; allowed children may reference any schema
// in the document. Callers run Import inside one transaction.
func (im *Importer) Import(dbc dbctx.Context, doc *Document) (*ImportResult, error) {
	if doc == nil {
		return &ImportResult{}, nil
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	res := &ImportResult{}
	templates := map[string]*contenttype.Template{}
	names := map[string]string{}
	for _, t := range doc.Templates {
		names[strings.ToLower(strings.TrimSpace(t.Alias))] = t.Name
	}
	resolveTemplate := func(alias string) (*contenttype.Template, error) {
		alias = strings.TrimSpace(alias)
		key := strings.ToLower(alias)
		if t, ok := templates[key]; ok {
			return t, nil
		}
		t, err := im.Templates.GetByAlias(dbc, alias)
		if err != nil {
			return nil, fmt.Errorf("load template %q: %w", alias, err)
		}
		if t == nil {
			if !im.CreateTemplates {
				return nil, fmt.Errorf("template %q does not exist", alias)
			}
			name := names[key]
			if name == "" {
				name = alias
			}
			if t, err = im.Templates.Create(dbc, alias, name, ""); err != nil {
				return nil, fmt.Errorf("create template %q: %w", alias, err)
			}
			res.TemplatesCreated = append(res.TemplatesCreated, alias)
		}
		templates[key] = t
		return t, nil
	}
	for _, t := range doc.Templates {
		if _, err := resolveTemplate(t.Alias); err != nil {
			return nil, err
		}
	}

	loaded := map[string]*contenttype.ContentTypeSchema{}
	resolveSchema := func(alias string) (*contenttype.ContentTypeSchema, error) {
		key := strings.ToLower(strings.TrimSpace(alias))
		if s, ok := loaded[key]; ok {
			return s, nil
		}
		s, err := im.Schemas.GetByAlias(dbc, strings.TrimSpace(alias))
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("schema %q does not exist", alias)
		}
		return s, nil
	}

	for _, sd := range doc.Schemas {
		alias := strings.TrimSpace(sd.Alias)
		s, err := im.Schemas.GetByAlias(dbc, alias)
		if err != nil {
			return nil, err
		}
		created := s == nil
		if created {
			s = contenttype.New(alias, sd.Name)
		}
		var parentID int64
		if sd.Parent != "" {
			parent, err := resolveSchema(sd.Parent)
			if err != nil {
				return nil, fmt.Errorf("schema %q parent: %w", alias, err)
			}
			parentID = parent.ID
		}
		if err := sd.apply(s, parentID, resolveTemplate); err != nil {
			return nil, fmt.Errorf("schema %q: %w", alias, err)
		}
		if created {
			err = im.Schemas.PersistNew(dbc, s)
		} else {
			err = im.Schemas.PersistUpdated(dbc, s)
		}
		if err != nil {
			return nil, err
		}
		if created {
			res.Created = append(res.Created, alias)
		} else {
			res.Updated = append(res.Updated, alias)
		}
		loaded[strings.ToLower(alias)] = s
	}

	// Allowed children are linked once every schema in the document exists.
	for _, sd := range doc.Schemas {
		s := loaded[strings.ToLower(strings.TrimSpace(sd.Alias))]
		ids := make([]int64, 0, len(sd.AllowedChildren))
		for _, childAlias := range sd.AllowedChildren {
			child, err := resolveSchema(childAlias)
			if err != nil {
				return nil, fmt.Errorf("schema %q allowed child: %w", sd.Alias, err)
			}
			ids = append(ids, child.ID)
		}
		if slices.Equal(ids, s.AllowedContentTypes) {
			continue
		}
		s.SetAllowedContentTypes(ids)
		if err := im.Schemas.PersistUpdated(dbc, s); err != nil {
			return nil, err
		}
	}
	if im.Log != nil {
		im.Log.Info("schema document imported",
			"created", len(res.Created),
			"updated", len(res.Updated),
			"templates_created", len(res.TemplatesCreated),
		)
	}
	return res, nil
}

func (sd Schema) apply(s *contenttype.ContentTypeSchema, parentID int64, template func(string) (*contenttype.Template, error)) error {
	s.SetName(strings.TrimSpace(sd.Name))
	s.SetIcon(sd.Icon)
	s.SetThumbnail(sd.Thumbnail)
	s.SetDescription(sd.Description)
	s.SetIsContainer(sd.IsContainer)
	s.SetAllowAtRoot(sd.AllowAtRoot)
	s.SetParentID(parentID)

	allowed := make([]*contenttype.Template, 0, len(sd.Templates))
	var def *contenttype.Template
	for _, alias := range sd.Templates {
		t, err := template(alias)
		if err != nil {
			return err
		}
		allowed = append(allowed, t)
		if strings.EqualFold(strings.TrimSpace(alias), strings.TrimSpace(sd.DefaultTemplate)) {
			def = t
		}
	}
	s.SetAllowedTemplates(allowed)
	s.SetDefaultTemplate(def)
	return sd.applyProperties(s)
}
