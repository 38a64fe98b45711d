package contenttype

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type ContentTypeRepo interface {
	Create(dbc dbctx.Context, row *types.ContentTypeRow) error
	GetByNodeID(dbc dbctx.Context, nodeID int64) (*types.ContentTypeRow, error)
	GetNodeIDByAlias(dbc dbctx.Context, alias string) (int64, error)
	UpdateByNodeID(dbc dbctx.Context, nodeID int64, updates map[string]interface{}) error
	DeleteByNodeID(dbc dbctx.Context, nodeID int64) error
}

type contentTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentTypeRepo(db *gorm.DB, baseLog *logger.Logger) ContentTypeRepo {
	return &contentTypeRepo{db: db, log: baseLog.With("repo", "ContentTypeRepo")}
}

func (r *contentTypeRepo) Create(dbc dbctx.Context, row *types.ContentTypeRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *contentTypeRepo) GetByNodeID(dbc dbctx.Context, nodeID int64) (*types.ContentTypeRow, error) {
	var out types.ContentTypeRow
	err := dbc.DB(r.db).Where("node_id = ?", nodeID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetNodeIDByAlias returns 0 when no schema carries alias.
func (r *contentTypeRepo) GetNodeIDByAlias(dbc dbctx.Context, alias string) (int64, error) {
	var ids []int64
	if err := dbc.DB(r.db).
		Model(&types.ContentTypeRow{}).
		Where("alias = ?", strings.TrimSpace(alias)).
		Order("node_id ASC").
		Limit(1).
		Pluck("node_id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

func (r *contentTypeRepo) UpdateByNodeID(dbc dbctx.Context, nodeID int64, updates map[string]interface{}) error {
	if nodeID <= 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.ContentTypeRow{}).Where("node_id = ?", nodeID).Updates(updates).Error
}

func (r *contentTypeRepo) DeleteByNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("node_id = ?", nodeID).Delete(&types.ContentTypeRow{}).Error
}
