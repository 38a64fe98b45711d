package aggregates

import (
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// planTemplateAssignments returns the document_type rows for a schema: the
// default first with is_default set, then every other allowed template in
// declared order. Nil and id-less templates are skipped; duplicates collapse.
func planTemplateAssignments(nodeID int64, allowed []*types.Template, def *types.Template) []*types.DocumentTypeRow {
	out := make([]*types.DocumentTypeRow, 0, len(allowed)+1)
	seen := make(map[int64]struct{}, len(allowed)+1)
	if def != nil && def.ID > 0 {
		seen[def.ID] = struct{}{}
		out = append(out, &types.DocumentTypeRow{ContentTypeNodeID: nodeID, TemplateNodeID: def.ID, IsDefault: true})
	}
	for _, t := range allowed {
		if t == nil || t.ID <= 0 {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, &types.DocumentTypeRow{ContentTypeNodeID: nodeID, TemplateNodeID: t.ID})
	}
	return out
}

// writeTemplateAssignments stores the planned rows. With replace set, every
// existing row for the schema is deleted first.
func (r *contentTypeRepository) writeTemplateAssignments(dbc dbctx.Context, s *types.ContentTypeSchema, replace bool) error {
	if replace {
		if err := r.deps.DocumentTypes.DeleteByContentTypeNodeID(dbc, s.ID); err != nil {
			return err
		}
	}
	return r.deps.DocumentTypes.Create(dbc, planTemplateAssignments(s.ID, s.AllowedTemplates, s.DefaultTemplate))
}
