package aggregates

import (
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// deleteStep removes one table's rows for the schema being deleted.
type deleteStep struct {
	Table string
	run   func(dbc dbctx.Context) error
}

// planCascadeDelete lists the deletes for schema id, dependents first and the
// node row last.
func (r *contentTypeRepository) planCascadeDelete(id int64) []deleteStep {
	d := r.deps
	return []deleteStep{
		{"user2node_notify", func(dbc dbctx.Context) error { return d.Dependents.DeleteNotificationsByNodeID(dbc, id) }},
		{"user2node_permission", func(dbc dbctx.Context) error { return d.Dependents.DeletePermissionsByNodeID(dbc, id) }},
		{"tag_relationship", func(dbc dbctx.Context) error { return d.Dependents.DeleteTagsByNodeID(dbc, id) }},
		{"content_type_allowed", func(dbc dbctx.Context) error { return d.Allowed.DeleteByParentID(dbc, id) }},
		{"content_type_allowed", func(dbc dbctx.Context) error { return d.Allowed.DeleteByAllowedID(dbc, id) }},
		{"content_type2content_type", func(dbc dbctx.Context) error { return d.Links.DeleteByParentOrChild(dbc, id) }},
		{"property_type", func(dbc dbctx.Context) error { return d.PropertyTypes.DeleteByContentTypeID(dbc, id) }},
		{"property_type_group", func(dbc dbctx.Context) error { return d.PropertyGroups.DeleteByContentTypeNodeID(dbc, id) }},
		{"document_type", func(dbc dbctx.Context) error { return d.DocumentTypes.DeleteByContentTypeNodeID(dbc, id) }},
		{"content_type", func(dbc dbctx.Context) error { return d.ContentTypes.DeleteByNodeID(dbc, id) }},
		{"node", func(dbc dbctx.Context) error { return d.Nodes.DeleteByIDAndObjectType(dbc, id, types.ObjectTypeDocumentType) }},
	}
}
