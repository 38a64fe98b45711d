package contenttype

import (
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
	"github.com/yungbote/schemastore/internal/pkg/query"
)

const projectionColumns = `
	node.id AS node_id,
	node.parent_id AS parent_id,
	node.level AS level,
	node.path AS path,
	node.sort_order AS sort_order,
	node.trashed AS trashed,
	node.user_id AS user_id,
	node.text AS text,
	node.unique_id AS unique_id,
	node.created_at AS node_created_at,
	content_type.id AS content_type_pk,
	content_type.alias AS alias,
	content_type.icon AS icon,
	content_type.thumbnail AS thumbnail,
	content_type.description AS description,
	content_type.is_container AS is_container,
	content_type.allow_at_root AS allow_at_root,
	content_type.updated_at AS updated_at,
	document_type.template_node_id AS template_node_id,
	document_type.is_default AS is_default`

// ProjectionRepo reads the flat node × content_type × document_type join.
// A schema with N template assignments yields N rows (at least one); rows
// for one schema are contiguous and the default assignment comes first.
type ProjectionRepo interface {
	Rows(dbc dbctx.Context, preds ...query.Predicate) ([]*types.ProjectionRow, error)
	RowsByID(dbc dbctx.Context, id int64) ([]*types.ProjectionRow, error)
	IDs(dbc dbctx.Context, preds ...query.Predicate) ([]int64, error)
}

type projectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectionRepo(db *gorm.DB, baseLog *logger.Logger) ProjectionRepo {
	return &projectionRepo{db: db, log: baseLog.With("repo", "ProjectionRepo")}
}

func (r *projectionRepo) base(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db).
		Table("node").
		Joins("JOIN content_type ON content_type.node_id = node.id").
		Joins("LEFT JOIN document_type ON document_type.content_type_node_id = node.id").
		Where("node.node_object_type = ?", types.ObjectTypeDocumentType)
}

func (r *projectionRepo) Rows(dbc dbctx.Context, preds ...query.Predicate) ([]*types.ProjectionRow, error) {
	var out []*types.ProjectionRow
	q := query.Apply(r.base(dbc), preds...).
		Select(projectionColumns).
		Order("node.id ASC").
		Order("CASE WHEN document_type.is_default THEN 1 ELSE 0 END DESC").
		Order("document_type.template_node_id ASC")
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectionRepo) RowsByID(dbc dbctx.Context, id int64) ([]*types.ProjectionRow, error) {
	return r.Rows(dbc, func(db *gorm.DB) *gorm.DB {
		return db.Where("node.id = ?", id)
	})
}

// IDs returns matching schema ids in first-seen order. The join may repeat
// an id once per template assignment; duplicates are collapsed.
func (r *projectionRepo) IDs(dbc dbctx.Context, preds ...query.Predicate) ([]int64, error) {
	var raw []int64
	q := query.Apply(r.base(dbc), preds...).
		Order("node.id ASC")
	if err := q.Pluck("node.id", &raw).Error; err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for _, id := range raw {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
