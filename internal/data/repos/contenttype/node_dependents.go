package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// NodeDependentsRepo covers the per-node tables owned by other subsystems
// (notifications, permissions, tags). The schema store only creates rows in
// tests and the CLI, and removes them when a schema node is deleted.
type NodeDependentsRepo interface {
	AddNotification(dbc dbctx.Context, row *types.NodeNotificationRow) error
	AddPermission(dbc dbctx.Context, row *types.NodePermissionRow) error
	AddTag(dbc dbctx.Context, row *types.TagRelationshipRow) error

	CountByNodeID(dbc dbctx.Context, nodeID int64) (int64, error)

	DeleteNotificationsByNodeID(dbc dbctx.Context, nodeID int64) error
	DeletePermissionsByNodeID(dbc dbctx.Context, nodeID int64) error
	DeleteTagsByNodeID(dbc dbctx.Context, nodeID int64) error
}

type nodeDependentsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeDependentsRepo(db *gorm.DB, baseLog *logger.Logger) NodeDependentsRepo {
	return &nodeDependentsRepo{db: db, log: baseLog.With("repo", "NodeDependentsRepo")}
}

func (r *nodeDependentsRepo) AddNotification(dbc dbctx.Context, row *types.NodeNotificationRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *nodeDependentsRepo) AddPermission(dbc dbctx.Context, row *types.NodePermissionRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *nodeDependentsRepo) AddTag(dbc dbctx.Context, row *types.TagRelationshipRow) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

// CountByNodeID sums rows across all three tables.
func (r *nodeDependentsRepo) CountByNodeID(dbc dbctx.Context, nodeID int64) (int64, error) {
	t := dbc.DB(r.db)
	var total int64
	for _, model := range []interface{}{
		&types.NodeNotificationRow{},
		&types.NodePermissionRow{},
		&types.TagRelationshipRow{},
	} {
		var n int64
		if err := t.Model(model).Where("node_id = ?", nodeID).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (r *nodeDependentsRepo) DeleteNotificationsByNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("node_id = ?", nodeID).Delete(&types.NodeNotificationRow{}).Error
}

func (r *nodeDependentsRepo) DeletePermissionsByNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("node_id = ?", nodeID).Delete(&types.NodePermissionRow{}).Error
}

func (r *nodeDependentsRepo) DeleteTagsByNodeID(dbc dbctx.Context, nodeID int64) error {
	return dbc.DB(r.db).Where("node_id = ?", nodeID).Delete(&types.TagRelationshipRow{}).Error
}
