package contenttype

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type NodeRepo interface {
	Create(dbc dbctx.Context, row *types.Node) error
	GetByID(dbc dbctx.Context, id int64) (*types.Node, error)
	GetByIDAndObjectType(dbc dbctx.Context, id int64, objectType uuid.UUID) (*types.Node, error)
	ListIDsByObjectType(dbc dbctx.Context, objectType uuid.UUID) ([]int64, error)
	MaxSortOrder(dbc dbctx.Context, parentID *int64, objectType uuid.UUID) (int, error)
	CountChildren(dbc dbctx.Context, id int64) (int64, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	RebaseDescendants(dbc dbctx.Context, oldPath, newPath string, levelDelta int) error
	ExistingIDs(dbc dbctx.Context, ids []int64, objectType uuid.UUID) ([]int64, error)
	DeleteByIDAndObjectType(dbc dbctx.Context, id int64, objectType uuid.UUID) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepo")}
}

func (r *nodeRepo) Create(dbc dbctx.Context, row *types.Node) error {
	if row == nil {
		return nil
	}
	if row.UniqueID == uuid.Nil {
		row.UniqueID = uuid.New()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *nodeRepo) GetByID(dbc dbctx.Context, id int64) (*types.Node, error) {
	var out types.Node
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *nodeRepo) GetByIDAndObjectType(dbc dbctx.Context, id int64, objectType uuid.UUID) (*types.Node, error) {
	var out types.Node
	err := dbc.DB(r.db).
		Where("id = ? AND node_object_type = ?", id, objectType).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *nodeRepo) ListIDsByObjectType(dbc dbctx.Context, objectType uuid.UUID) ([]int64, error) {
	var out []int64
	if err := dbc.DB(r.db).
		Model(&types.Node{}).
		Where("node_object_type = ?", objectType).
		Order("id ASC").
		Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MaxSortOrder returns the highest sort order among siblings, or -1 when
// there are none.
func (r *nodeRepo) MaxSortOrder(dbc dbctx.Context, parentID *int64, objectType uuid.UUID) (int, error) {
	q := dbc.DB(r.db).Model(&types.Node{}).Where("node_object_type = ?", objectType)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	var max *int
	if err := q.Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *nodeRepo) CountChildren(dbc dbctx.Context, id int64) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Node{}).Where("parent_id = ?", id).Count(&n).Error
	return n, err
}

func (r *nodeRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Node{}).Where("id = ?", id).Updates(updates).Error
}

// ExistingIDs returns the subset of ids that are nodes of objectType.
func (r *nodeRepo) ExistingIDs(dbc dbctx.Context, ids []int64, objectType uuid.UUID) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var out []int64
	err := dbc.DB(r.db).
		Model(&types.Node{}).
		Where("id IN ? AND node_object_type = ?", ids, objectType).
		Pluck("id", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) DeleteByIDAndObjectType(dbc dbctx.Context, id int64, objectType uuid.UUID) error {
	return dbc.DB(r.db).
		Where("id = ? AND node_object_type = ?", id, objectType).
		Delete(&types.Node{}).Error
}

// RebaseDescendants rewrites the path prefix and level of every node below
// oldPath after its root moved to newPath.
func (r *nodeRepo) RebaseDescendants(dbc dbctx.Context, oldPath, newPath string, levelDelta int) error {
	if oldPath == "" || (oldPath == newPath && levelDelta == 0) {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Node{}).
		Where("path LIKE ?", oldPath+",%").
		Updates(map[string]interface{}{
			"path":  gorm.Expr("CAST(? AS TEXT) || SUBSTR(path, CAST(? AS INTEGER))", newPath, len(oldPath)+1),
			"level": gorm.Expr("level + CAST(? AS INTEGER)", levelDelta),
		}).Error
}
