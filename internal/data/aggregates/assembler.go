package aggregates

import (
	"fmt"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// schemaFromRows builds the structural part of a schema from projection rows
// for a single id. Rows arrive default-first; only the first row supplies
// structural fields. It returns the distinct template ids in row order and
// the default template id (0 when none).
func schemaFromRows(rows []*types.ProjectionRow) (*types.ContentTypeSchema, []int64, int64) {
	if len(rows) == 0 || rows[0] == nil {
		return nil, nil, 0
	}
	first := rows[0]
	s := types.New(first.Alias, first.Text)
	s.ID = first.NodeID
	s.UniqueID = first.UniqueID
	if first.ParentID != nil {
		s.ParentID = *first.ParentID
	}
	s.Level = first.Level
	s.Path = first.Path
	s.SortOrder = first.SortOrder
	s.Trashed = first.Trashed
	if first.UserID != nil {
		s.CreatorID = *first.UserID
	}
	s.Icon = first.Icon
	s.Thumbnail = first.Thumbnail
	s.Description = first.Description
	s.IsContainer = first.IsContainer
	s.AllowAtRoot = first.AllowAtRoot
	s.CreateDate = first.NodeCreatedAt
	s.UpdateDate = first.UpdatedAt

	var defaultID int64
	if first.IsDefault != nil && *first.IsDefault && first.TemplateNodeID != nil {
		defaultID = *first.TemplateNodeID
	}

	templateIDs := make([]int64, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		if row == nil || row.NodeID != first.NodeID || row.TemplateNodeID == nil {
			continue
		}
		id := *row.TemplateNodeID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		templateIDs = append(templateIDs, id)
	}
	return s, templateIDs, defaultID
}

// assemble turns projection rows into a schema without allowed parents.
// It returns nil when rows is empty.
func (r *contentTypeRepository) assemble(dbc dbctx.Context, rows []*types.ProjectionRow) (*types.ContentTypeSchema, error) {
	s, templateIDs, defaultID := schemaFromRows(rows)
	if s == nil {
		return nil, nil
	}

	for _, id := range templateIDs {
		t, err := r.deps.Templates.GetByID(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("load template %d: %w", id, err)
		}
		if t == nil {
			r.log.Warn("schema references missing template", "schema_id", s.ID, "template_id", id)
			continue
		}
		s.AllowedTemplates = append(s.AllowedTemplates, t)
		if id == defaultID {
			s.DefaultTemplate = t
		}
	}

	groupRows, err := r.deps.PropertyGroups.GetByContentTypeNodeID(dbc, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load property groups: %w", err)
	}
	typeRows, err := r.deps.PropertyTypes.GetByContentTypeID(dbc, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load property types: %w", err)
	}
	attachProperties(s, groupRows, typeRows)

	allowed, err := r.deps.Allowed.GetChildIDs(dbc, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load allowed content types: %w", err)
	}
	s.AllowedContentTypes = append(s.AllowedContentTypes, allowed...)
	return s, nil
}

// attachProperties places property types into their groups; types whose
// group is unknown become ungrouped.
func attachProperties(s *types.ContentTypeSchema, groupRows []*types.PropertyGroupRow, typeRows []*types.PropertyTypeRow) {
	byID := make(map[int64]*types.PropertyGroup, len(groupRows))
	for _, g := range groupRows {
		if g == nil {
			continue
		}
		pg := &types.PropertyGroup{ID: g.ID, Name: g.Text, SortOrder: g.SortOrder, PropertyTypes: []*types.PropertyType{}}
		byID[g.ID] = pg
		s.PropertyGroups = append(s.PropertyGroups, pg)
	}
	for _, row := range typeRows {
		if row == nil {
			continue
		}
		pt := &types.PropertyType{
			ID:                  row.ID,
			Alias:               row.Alias,
			Name:                row.Name,
			Description:         row.Description,
			DataTypeID:          row.DataTypeID,
			PropertyEditorAlias: row.PropertyEditorAlias,
			Mandatory:           row.Mandatory,
			ValidationRegExp:    row.ValidationRegExp,
			SortOrder:           row.SortOrder,
			Config:              row.Config,
		}
		if row.PropertyTypeGroupID != nil {
			if g, ok := byID[*row.PropertyTypeGroupID]; ok {
				pt.GroupID = g.ID
				g.PropertyTypes = append(g.PropertyTypes, pt)
				continue
			}
		}
		s.NoGroupPropertyTypes = append(s.NoGroupPropertyTypes, pt)
	}
}
