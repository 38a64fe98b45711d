package contenttype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	// ObjectTypeDocumentType tags node rows that hold a content-type schema.
	ObjectTypeDocumentType = uuid.MustParse("a2cb7800-f571-4787-9638-bc48539a0efb")
	// ObjectTypeTemplate tags node rows that hold a template.
	ObjectTypeTemplate = uuid.MustParse("6fbde604-4178-42ce-a10b-8a2600a2f07d")
)

// RootPath is the path prefix shared by every node without a parent.
const RootPath = "-1"

// Node is the polymorphic tree row shared by schemas, templates and content.
type Node struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID       *int64    `gorm:"column:parent_id;index" json:"parent_id"`
	Level          int       `gorm:"column:level;not null" json:"level"`
	Path           string    `gorm:"column:path;size:512;not null;index" json:"path"`
	SortOrder      int       `gorm:"column:sort_order;not null" json:"sort_order"`
	Trashed        bool      `gorm:"column:trashed;not null" json:"trashed"`
	UserID         *int64    `gorm:"column:user_id" json:"user_id"`
	Text           string    `gorm:"column:text;size:255" json:"text"`
	UniqueID       uuid.UUID `gorm:"column:unique_id;type:uuid;not null;uniqueIndex" json:"unique_id"`
	NodeObjectType uuid.UUID `gorm:"column:node_object_type;type:uuid;not null;index" json:"node_object_type"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Node) TableName() string { return "node" }

type ContentTypeRow struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	NodeID      int64     `gorm:"column:node_id;not null;uniqueIndex" json:"node_id"`
	Alias       string    `gorm:"column:alias;size:255;not null;index" json:"alias"`
	Icon        string    `gorm:"column:icon;size:255" json:"icon"`
	Thumbnail   string    `gorm:"column:thumbnail;size:255" json:"thumbnail"`
	Description string    `gorm:"column:description;size:1500" json:"description"`
	IsContainer bool      `gorm:"column:is_container;not null" json:"is_container"`
	AllowAtRoot bool      `gorm:"column:allow_at_root;not null" json:"allow_at_root"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (ContentTypeRow) TableName() string { return "content_type" }

// DocumentTypeRow assigns a template to a schema. At most one row per
// schema carries IsDefault.
type DocumentTypeRow struct {
	ContentTypeNodeID int64 `gorm:"column:content_type_node_id;primaryKey;autoIncrement:false" json:"content_type_node_id"`
	TemplateNodeID    int64 `gorm:"column:template_node_id;primaryKey;autoIncrement:false" json:"template_node_id"`
	IsDefault         bool  `gorm:"column:is_default;not null" json:"is_default"`
}

func (DocumentTypeRow) TableName() string { return "document_type" }

type PropertyGroupRow struct {
	ID                int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentTypeNodeID int64  `gorm:"column:content_type_node_id;not null;index" json:"content_type_node_id"`
	Text              string `gorm:"column:text;size:255;not null" json:"text"`
	SortOrder         int    `gorm:"column:sort_order;not null" json:"sort_order"`
}

func (PropertyGroupRow) TableName() string { return "property_type_group" }

type PropertyTypeRow struct {
	ID                  int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentTypeID       int64          `gorm:"column:content_type_id;not null;index" json:"content_type_id"`
	PropertyTypeGroupID *int64         `gorm:"column:property_type_group_id;index" json:"property_type_group_id"`
	DataTypeID          int64          `gorm:"column:data_type_id;not null" json:"data_type_id"`
	PropertyEditorAlias string         `gorm:"column:property_editor_alias;size:255" json:"property_editor_alias"`
	Alias               string         `gorm:"column:alias;size:255;not null" json:"alias"`
	Name                string         `gorm:"column:name;size:255" json:"name"`
	Description         string         `gorm:"column:description;size:2000" json:"description"`
	Mandatory           bool           `gorm:"column:mandatory;not null" json:"mandatory"`
	ValidationRegExp    string         `gorm:"column:validation_reg_exp;size:255" json:"validation_reg_exp"`
	SortOrder           int            `gorm:"column:sort_order;not null" json:"sort_order"`
	Config              datatypes.JSON `gorm:"column:config" json:"config"`
}

func (PropertyTypeRow) TableName() string { return "property_type" }

// AllowedContentTypeRow is a directed "may appear as child" edge.
type AllowedContentTypeRow struct {
	ParentContentTypeID  int64 `gorm:"column:parent_content_type_id;primaryKey;autoIncrement:false" json:"parent_content_type_id"`
	AllowedContentTypeID int64 `gorm:"column:allowed_content_type_id;primaryKey;autoIncrement:false;index" json:"allowed_content_type_id"`
	SortOrder            int   `gorm:"column:sort_order;not null" json:"sort_order"`
}

func (AllowedContentTypeRow) TableName() string { return "content_type_allowed" }

// ContentTypeLinkRow links a schema to its parent schema.
type ContentTypeLinkRow struct {
	ParentContentTypeID int64 `gorm:"column:parent_content_type_id;primaryKey;autoIncrement:false" json:"parent_content_type_id"`
	ChildContentTypeID  int64 `gorm:"column:child_content_type_id;primaryKey;autoIncrement:false;index" json:"child_content_type_id"`
}

func (ContentTypeLinkRow) TableName() string { return "content_type2content_type" }

type NodeNotificationRow struct {
	UserID int64  `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	NodeID int64  `gorm:"column:node_id;primaryKey;autoIncrement:false;index" json:"node_id"`
	Action string `gorm:"column:action;primaryKey;size:1" json:"action"`
}

func (NodeNotificationRow) TableName() string { return "user2node_notify" }

type NodePermissionRow struct {
	UserID     int64  `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	NodeID     int64  `gorm:"column:node_id;primaryKey;autoIncrement:false;index" json:"node_id"`
	Permission string `gorm:"column:permission;primaryKey;size:255" json:"permission"`
}

func (NodePermissionRow) TableName() string { return "user2node_permission" }

type TagRelationshipRow struct {
	NodeID         int64 `gorm:"column:node_id;primaryKey;autoIncrement:false;index" json:"node_id"`
	TagID          int64 `gorm:"column:tag_id;primaryKey;autoIncrement:false" json:"tag_id"`
	PropertyTypeID int64 `gorm:"column:property_type_id;primaryKey;autoIncrement:false" json:"property_type_id"`
}

func (TagRelationshipRow) TableName() string { return "tag_relationship" }

type TemplateRow struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	NodeID int64  `gorm:"column:node_id;not null;uniqueIndex" json:"node_id"`
	Alias  string `gorm:"column:alias;size:255;not null;index" json:"alias"`
	Design string `gorm:"column:design;type:text" json:"design"`
}

func (TemplateRow) TableName() string { return "template" }

// ProjectionRow is one row of the node × content_type × document_type join.
// Template columns are nil when the schema has no template assignments.
type ProjectionRow struct {
	NodeID         int64     `gorm:"column:node_id"`
	ParentID       *int64    `gorm:"column:parent_id"`
	Level          int       `gorm:"column:level"`
	Path           string    `gorm:"column:path"`
	SortOrder      int       `gorm:"column:sort_order"`
	Trashed        bool      `gorm:"column:trashed"`
	UserID         *int64    `gorm:"column:user_id"`
	Text           string    `gorm:"column:text"`
	UniqueID       uuid.UUID `gorm:"column:unique_id"`
	NodeCreatedAt  time.Time `gorm:"column:node_created_at"`
	ContentTypePK  int64     `gorm:"column:content_type_pk"`
	Alias          string    `gorm:"column:alias"`
	Icon           string    `gorm:"column:icon"`
	Thumbnail      string    `gorm:"column:thumbnail"`
	Description    string    `gorm:"column:description"`
	IsContainer    bool      `gorm:"column:is_container"`
	AllowAtRoot    bool      `gorm:"column:allow_at_root"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
	TemplateNodeID *int64    `gorm:"column:template_node_id"`
	IsDefault      *bool     `gorm:"column:is_default"`
}

// AllModels lists every table owned by the schema store, for migration.
func AllModels() []interface{} {
	return []interface{}{
		&Node{},
		&ContentTypeRow{},
		&DocumentTypeRow{},
		&PropertyGroupRow{},
		&PropertyTypeRow{},
		&AllowedContentTypeRow{},
		&ContentTypeLinkRow{},
		&NodeNotificationRow{},
		&NodePermissionRow{},
		&TagRelationshipRow{},
		&TemplateRow{},
	}
}
