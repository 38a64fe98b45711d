package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// AllowedContentTypeRepo stores "parent allows child" edges between schemas.
type AllowedContentTypeRepo interface {
	Create(dbc dbctx.Context, rows []*types.AllowedContentTypeRow) error
	GetChildIDs(dbc dbctx.Context, parentID int64) ([]int64, error)
	GetParentIDs(dbc dbctx.Context, childID int64) ([]int64, error)
	DeleteByParentID(dbc dbctx.Context, parentID int64) error
	DeleteByAllowedID(dbc dbctx.Context, childID int64) error
}

type allowedContentTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAllowedContentTypeRepo(db *gorm.DB, baseLog *logger.Logger) AllowedContentTypeRepo {
	return &allowedContentTypeRepo{db: db, log: baseLog.With("repo", "AllowedContentTypeRepo")}
}

func (r *allowedContentTypeRepo) Create(dbc dbctx.Context, rows []*types.AllowedContentTypeRow) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

// GetChildIDs returns allowed child ids in their declared order.
func (r *allowedContentTypeRepo) GetChildIDs(dbc dbctx.Context, parentID int64) ([]int64, error) {
	var out []int64
	if err := dbc.DB(r.db).
		Model(&types.AllowedContentTypeRow{}).
		Where("parent_content_type_id = ?", parentID).
		Order("sort_order ASC, allowed_content_type_id ASC").
		Pluck("allowed_content_type_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetParentIDs returns the ids of schemas that allow childID, ascending.
func (r *allowedContentTypeRepo) GetParentIDs(dbc dbctx.Context, childID int64) ([]int64, error) {
	var out []int64
	if err := dbc.DB(r.db).
		Model(&types.AllowedContentTypeRow{}).
		Where("allowed_content_type_id = ?", childID).
		Order("parent_content_type_id ASC").
		Pluck("parent_content_type_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *allowedContentTypeRepo) DeleteByParentID(dbc dbctx.Context, parentID int64) error {
	return dbc.DB(r.db).Where("parent_content_type_id = ?", parentID).Delete(&types.AllowedContentTypeRow{}).Error
}

func (r *allowedContentTypeRepo) DeleteByAllowedID(dbc dbctx.Context, childID int64) error {
	return dbc.DB(r.db).Where("allowed_content_type_id = ?", childID).Delete(&types.AllowedContentTypeRow{}).Error
}
