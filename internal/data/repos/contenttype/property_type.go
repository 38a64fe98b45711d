package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type PropertyTypeRepo interface {
	Create(dbc dbctx.Context, row *types.PropertyTypeRow) error
	Update(dbc dbctx.Context, row *types.PropertyTypeRow) error
	GetByContentTypeID(dbc dbctx.Context, nodeID int64) ([]*types.PropertyTypeRow, error)
	DeleteByIDs(dbc dbctx.Context, ids []int64) error
	DeleteByContentTypeID(dbc dbctx.Context, nodeID int64) error
}

type propertyTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyTypeRepo(db *gorm.DB, baseLog *logger.Logger) PropertyTypeRepo {
	return &propertyTypeRepo{db: db, log: baseLog.With("repo", "PropertyTypeRepo")}
}

func (r *propertyTypeRepo) Create(dbc dbctx.Context, row *types.PropertyTypeRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *propertyTypeRepo) Update(dbc dbctx.Context, row *types.PropertyTypeRow) error {
	if row == nil || row.ID <= 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PropertyTypeRow{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"property_type_group_id": row.PropertyTypeGroupID,
			"data_type_id":           row.DataTypeID,
			"property_editor_alias":  row.PropertyEditorAlias,
			"alias":                  row.Alias,
			"name":                   row.Name,
			"description":            row.Description,
			"mandatory":              row.Mandatory,
			"validation_reg_exp":     row.ValidationRegExp,
			"sort_order":             row.SortOrder,
			"config":                 row.Config,
		}).Error
}

// GetByContentTypeID keys on the schema's node id.
func (r *propertyTypeRepo) GetByContentTypeID(dbc dbctx.Context, nodeID int64) ([]*types.PropertyTypeRow, error) {
	var out []*types.PropertyTypeRow
	if err := dbc.DB(r.db).
		Where("content_type_id = ?", nodeID).
		Order("sort_order ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *propertyTypeRepo) DeleteByIDs(dbc dbctx.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.PropertyTypeRow{}).Error
}

func (r *propertyTypeRepo) DeleteByContentTypeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("content_type_id = ?", nodeID).Delete(&types.PropertyTypeRow{}).Error
}
