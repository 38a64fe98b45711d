package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// ContentTypeLinkRepo stores schema inheritance links (parent -> child).
type ContentTypeLinkRepo interface {
	Create(dbc dbctx.Context, row *types.ContentTypeLinkRow) error
	GetParentIDs(dbc dbctx.Context, childID int64) ([]int64, error)
	DeleteByChildID(dbc dbctx.Context, childID int64) error
	DeleteByParentOrChild(dbc dbctx.Context, id int64) error
}

type contentTypeLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentTypeLinkRepo(db *gorm.DB, baseLog *logger.Logger) ContentTypeLinkRepo {
	return &contentTypeLinkRepo{db: db, log: baseLog.With("repo", "ContentTypeLinkRepo")}
}

func (r *contentTypeLinkRepo) Create(dbc dbctx.Context, row *types.ContentTypeLinkRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *contentTypeLinkRepo) GetParentIDs(dbc dbctx.Context, childID int64) ([]int64, error) {
	var out []int64
	if err := dbc.DB(r.db).
		Model(&types.ContentTypeLinkRow{}).
		Where("child_content_type_id = ?", childID).
		Order("parent_content_type_id ASC").
		Pluck("parent_content_type_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentTypeLinkRepo) DeleteByChildID(dbc dbctx.Context, childID int64) error {
	return dbc.DB(r.db).Where("child_content_type_id = ?", childID).Delete(&types.ContentTypeLinkRow{}).Error
}

func (r *contentTypeLinkRepo) DeleteByParentOrChild(dbc dbctx.Context, id int64) error {
	return dbc.DB(r.db).
		Where("parent_content_type_id = ? OR child_content_type_id = ?", id, id).
		Delete(&types.ContentTypeLinkRow{}).Error
}
