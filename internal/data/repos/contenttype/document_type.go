package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// DocumentTypeRepo stores template assignments (schema, template, is_default).
type DocumentTypeRepo interface {
	Create(dbc dbctx.Context, rows []*types.DocumentTypeRow) error
	GetByContentTypeNodeID(dbc dbctx.Context, nodeID int64) ([]*types.DocumentTypeRow, error)
	CountDefaults(dbc dbctx.Context, nodeID int64) (int64, error)
	DeleteByContentTypeNodeID(dbc dbctx.Context, nodeID int64) error
}

type documentTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentTypeRepo(db *gorm.DB, baseLog *logger.Logger) DocumentTypeRepo {
	return &documentTypeRepo{db: db, log: baseLog.With("repo", "DocumentTypeRepo")}
}

// Create inserts rows one at a time so the default row always lands first.
func (r *documentTypeRepo) Create(dbc dbctx.Context, rows []*types.DocumentTypeRow) error {
	t := dbc.DB(r.db)
	for _, row := range rows {
		if row == nil {
			continue
		}
		if err := t.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByContentTypeNodeID returns assignments with the default first.
func (r *documentTypeRepo) GetByContentTypeNodeID(dbc dbctx.Context, nodeID int64) ([]*types.DocumentTypeRow, error) {
	var out []*types.DocumentTypeRow
	if err := dbc.DB(r.db).
		Where("content_type_node_id = ?", nodeID).
		Order("CASE WHEN is_default THEN 1 ELSE 0 END DESC").
		Order("template_node_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentTypeRepo) CountDefaults(dbc dbctx.Context, nodeID int64) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.DocumentTypeRow{}).
		Where("content_type_node_id = ? AND is_default = ?", nodeID, true).
		Count(&n).Error
	return n, err
}

func (r *documentTypeRepo) DeleteByContentTypeNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("content_type_node_id = ?", nodeID).Delete(&types.DocumentTypeRow{}).Error
}
