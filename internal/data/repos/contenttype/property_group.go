package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type PropertyGroupRepo interface {
	Create(dbc dbctx.Context, row *types.PropertyGroupRow) error
	Update(dbc dbctx.Context, row *types.PropertyGroupRow) error
	GetByContentTypeNodeID(dbc dbctx.Context, nodeID int64) ([]*types.PropertyGroupRow, error)
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
	DeleteByContentTypeNodeID(dbc dbctx.Context, nodeID int64) error
}

type propertyGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyGroupRepo(db *gorm.DB, baseLog *logger.Logger) PropertyGroupRepo {
	return &propertyGroupRepo{db: db, log: baseLog.With("repo", "PropertyGroupRepo")}
}

func (r *propertyGroupRepo) Create(dbc dbctx.Context, row *types.PropertyGroupRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *propertyGroupRepo) Update(dbc dbctx.Context, row *types.PropertyGroupRow) error {
	if row == nil || row.ID <= 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PropertyGroupRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"text":       row.Text,
			"sort_order": row.SortOrder,
		}).Error
}

func (r *propertyGroupRepo) GetByContentTypeNodeID(dbc dbctx.Context, nodeID int64) ([]*types.PropertyGroupRow, error) {
	var out []*types.PropertyGroupRow
	if err := dbc.DB(r.db).
		Where("content_type_node_id = ?", nodeID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *propertyGroupRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.PropertyGroupRow{}).Error
}

func (r *propertyGroupRepo) DeleteByContentTypeNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("content_type_node_id = ?", nodeID).Delete(&types.PropertyGroupRow{}).Error
}
