package aggregates

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
)

// schemaSnapshot is the cache encoding of a loaded schema graph. The graph
// may contain cycles through AllowedParents, so every reachable schema is
// stored once and parents are referenced by id.
type schemaSnapshot struct {
	RootID  int64          `json:"root_id"`
	Schemas []schemaRecord `json:"schemas"`
}

type schemaRecord struct {
	ID                   int64                  `json:"id"`
	UniqueID             uuid.UUID              `json:"unique_id"`
	ParentID             int64                  `json:"parent_id,omitempty"`
	Level                int                    `json:"level"`
	Path                 string                 `json:"path"`
	SortOrder            int                    `json:"sort_order"`
	CreatorID            int64                  `json:"creator_id,omitempty"`
	Trashed              bool                   `json:"trashed,omitempty"`
	Name                 string                 `json:"name"`
	Alias                string                 `json:"alias"`
	Icon                 string                 `json:"icon,omitempty"`
	Thumbnail            string                 `json:"thumbnail,omitempty"`
	Description          string                 `json:"description,omitempty"`
	IsContainer          bool                   `json:"is_container,omitempty"`
	AllowAtRoot          bool                   `json:"allow_at_root,omitempty"`
	CreateDate           time.Time              `json:"create_date"`
	UpdateDate           time.Time              `json:"update_date"`
	PropertyGroups       []*types.PropertyGroup `json:"property_groups"`
	NoGroupPropertyTypes []*types.PropertyType  `json:"no_group_property_types"`
	AllowedContentTypes  []int64                `json:"allowed_content_types"`
	AllowedTemplates     []*types.Template      `json:"allowed_templates"`
	DefaultTemplateID    int64                  `json:"default_template_id,omitempty"`
	AllowedParentIDs     []int64                `json:"allowed_parent_ids"`
}

func encodeSchema(root *types.ContentTypeSchema) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("encode nil schema")
	}
	snap := schemaSnapshot{RootID: root.ID}
	seen := map[int64]struct{}{}
	queue := []*types.ContentTypeSchema{root}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if s == nil {
			continue
		}
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		snap.Schemas = append(snap.Schemas, schemaRecord{
			ID:                   s.ID,
			UniqueID:             s.UniqueID,
			ParentID:             s.ParentID,
			Level:                s.Level,
			Path:                 s.Path,
			SortOrder:            s.SortOrder,
			CreatorID:            s.CreatorID,
			Trashed:              s.Trashed,
			Name:                 s.Name,
			Alias:                s.Alias,
			Icon:                 s.Icon,
			Thumbnail:            s.Thumbnail,
			Description:          s.Description,
			IsContainer:          s.IsContainer,
			AllowAtRoot:          s.AllowAtRoot,
			CreateDate:           s.CreateDate,
			UpdateDate:           s.UpdateDate,
			PropertyGroups:       s.PropertyGroups,
			NoGroupPropertyTypes: s.NoGroupPropertyTypes,
			AllowedContentTypes:  s.AllowedContentTypes,
			AllowedTemplates:     s.AllowedTemplates,
			DefaultTemplateID:    s.DefaultTemplateID(),
			AllowedParentIDs:     s.AllowedParentIDs(),
		})
		queue = append(queue, s.AllowedParents...)
	}
	return json.Marshal(snap)
}

func decodeSchema(raw []byte) (*types.ContentTypeSchema, error) {
	var snap schemaSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	byID := make(map[int64]*types.ContentTypeSchema, len(snap.Schemas))
	for _, rec := range snap.Schemas {
		s := types.New(rec.Alias, rec.Name)
		s.ID = rec.ID
		s.UniqueID = rec.UniqueID
		s.ParentID = rec.ParentID
		s.Level = rec.Level
		s.Path = rec.Path
		s.SortOrder = rec.SortOrder
		s.CreatorID = rec.CreatorID
		s.Trashed = rec.Trashed
		s.Icon = rec.Icon
		s.Thumbnail = rec.Thumbnail
		s.Description = rec.Description
		s.IsContainer = rec.IsContainer
		s.AllowAtRoot = rec.AllowAtRoot
		s.CreateDate = rec.CreateDate
		s.UpdateDate = rec.UpdateDate
		if rec.PropertyGroups != nil {
			s.PropertyGroups = rec.PropertyGroups
		}
		if rec.NoGroupPropertyTypes != nil {
			s.NoGroupPropertyTypes = rec.NoGroupPropertyTypes
		}
		if rec.AllowedContentTypes != nil {
			s.AllowedContentTypes = rec.AllowedContentTypes
		}
		if rec.AllowedTemplates != nil {
			s.AllowedTemplates = rec.AllowedTemplates
		}
		for _, t := range s.AllowedTemplates {
			if t != nil && rec.DefaultTemplateID > 0 && t.ID == rec.DefaultTemplateID {
				s.DefaultTemplate = t
			}
		}
		byID[s.ID] = s
	}
	for _, rec := range snap.Schemas {
		s := byID[rec.ID]
		for _, pid := range rec.AllowedParentIDs {
			p, ok := byID[pid]
			if !ok {
				return nil, fmt.Errorf("snapshot of schema %d misses parent %d", snap.RootID, pid)
			}
			s.AllowedParents = append(s.AllowedParents, p)
		}
	}
	root, ok := byID[snap.RootID]
	if !ok {
		return nil, fmt.Errorf("snapshot misses root schema %d", snap.RootID)
	}
	return root, nil
}
