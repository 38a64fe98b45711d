// Package schemafile maps content-type schemas to and from a YAML document
// used by the CLI for bulk import and export. Schemas, parents, allowed
// children and templates are referenced by alias so a document can move
// between databases.
package schemafile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/schemastore/internal/domain/contenttype"
)

type Document struct {
	Templates []Template `yaml:"templates,omitempty"`
	Schemas   []Schema   `yaml:"schemas"`
}

type Template struct {
	Alias string `yaml:"alias"`
	Name  string `yaml:"name,omitempty"`
}

type Schema struct {
	Alias           string     `yaml:"alias"`
	Name            string     `yaml:"name"`
	Icon            string     `yaml:"icon,omitempty"`
	Thumbnail       string     `yaml:"thumbnail,omitempty"`
	Description     string     `yaml:"description,omitempty"`
	IsContainer     bool       `yaml:"is_container,omitempty"`
	AllowAtRoot     bool       `yaml:"allow_at_root,omitempty"`
	Parent          string     `yaml:"parent,omitempty"`
	AllowedChildren []string   `yaml:"allowed_children,omitempty"`
	Templates       []string   `yaml:"templates,omitempty"`
	DefaultTemplate string     `yaml:"default_template,omitempty"`
	Groups          []Group    `yaml:"groups,omitempty"`
	Properties      []Property `yaml:"properties,omitempty"`
}

type Group struct {
	Name       string     `yaml:"name"`
	SortOrder  int        `yaml:"sort_order,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
}

type Property struct {
	Alias       string         `yaml:"alias"`
	Name        string         `yaml:"name,omitempty"`
	Description string         `yaml:"description,omitempty"`
	DataTypeID  int64          `yaml:"data_type_id,omitempty"`
	Editor      string         `yaml:"editor,omitempty"`
	Mandatory   bool           `yaml:"mandatory,omitempty"`
	Validation  string         `yaml:"validation,omitempty"`
	SortOrder   int            `yaml:"sort_order,omitempty"`
	Config      map[string]any `yaml:"config,omitempty"`
}

// Decode reads a document, rejecting unknown keys and duplicate aliases.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("decode schema document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode schema document: %w", err)
	}
	return enc.Close()
}

func (d *Document) Validate() error {
	var errs []error
	seen := map[string]struct{}{}
	for i, s := range d.Schemas {
		alias := strings.TrimSpace(s.Alias)
		if alias == "" {
			errs = append(errs, fmt.Errorf("schemas[%d]: alias is required", i))
			continue
		}
		key := strings.ToLower(alias)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("schemas[%d]: duplicate alias %q", i, alias))
		}
		seen[key] = struct{}{}
		if s.DefaultTemplate != "" && !containsFold(s.Templates, s.DefaultTemplate) {
			errs = append(errs, fmt.Errorf("schemas[%d]: default template %q is not listed in templates", i, s.DefaultTemplate))
		}
	}
	for i, t := range d.Templates {
		if strings.TrimSpace(t.Alias) == "" {
			errs = append(errs, fmt.Errorf("templates[%d]: alias is required", i))
		}
	}
	return errors.Join(errs...)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func (p Property) toDomain(existing *contenttype.PropertyType) (*contenttype.PropertyType, error) {
	pt := &contenttype.PropertyType{}
	if existing != nil {
		pt.ID = existing.ID
	}
	pt.Alias = strings.TrimSpace(p.Alias)
	pt.Name = p.Name
	pt.Description = p.Description
	pt.DataTypeID = p.DataTypeID
	pt.PropertyEditorAlias = p.Editor
	pt.Mandatory = p.Mandatory
	pt.ValidationRegExp = p.Validation
	pt.SortOrder = p.SortOrder
	if len(p.Config) > 0 {
		raw, err := json.Marshal(p.Config)
		if err != nil {
			return nil, fmt.Errorf("property %q config: %w", p.Alias, err)
		}
		pt.Config = raw
	}
	return pt, nil
}

func propertyFromDomain(pt *contenttype.PropertyType) Property {
	p := Property{
		Alias:       pt.Alias,
		Name:        pt.Name,
		Description: pt.Description,
		DataTypeID:  pt.DataTypeID,
		Editor:      pt.PropertyEditorAlias,
		Mandatory:   pt.Mandatory,
		Validation:  pt.ValidationRegExp,
		SortOrder:   pt.SortOrder,
	}
	if len(pt.Config) > 0 {
		var cfg map[string]any
		if err := json.Unmarshal(pt.Config, &cfg); err == nil && len(cfg) > 0 {
			p.Config = cfg
		}
	}
	return p
}

// applyProperties replaces the schema's groups and property types with the
// document's, keeping ids of groups and property types that already exist
// under the same name or alias.
func (sd Schema) applyProperties(s *contenttype.ContentTypeSchema) error {
	oldGroups := map[string]*contenttype.PropertyGroup{}
	for _, g := range s.PropertyGroups {
		if g != nil {
			oldGroups[g.Name] = g
		}
	}
	oldTypes := map[string]*contenttype.PropertyType{}
	for _, pt := range s.PropertyTypes() {
		oldTypes[strings.ToLower(pt.Alias)] = pt
	}

	s.PropertyGroups = []*contenttype.PropertyGroup{}
	s.NoGroupPropertyTypes = []*contenttype.PropertyType{}
	for _, gd := range sd.Groups {
		g := contenttype.NewPropertyGroup(strings.TrimSpace(gd.Name), gd.SortOrder)
		if old, ok := oldGroups[g.Name]; ok {
			g.ID = old.ID
		}
		s.AddPropertyGroup(g)
		for _, pd := range gd.Properties {
			pt, err := pd.toDomain(oldTypes[strings.ToLower(strings.TrimSpace(pd.Alias))])
			if err != nil {
				return err
			}
			if err := s.AddPropertyType(pt, g.Name); err != nil {
				return err
			}
		}
	}
	for _, pd := range sd.Properties {
		pt, err := pd.toDomain(oldTypes[strings.ToLower(strings.TrimSpace(pd.Alias))])
		if err != nil {
			return err
		}
		if err := s.AddPropertyType(pt, ""); err != nil {
			return err
		}
	}
	return nil
}
