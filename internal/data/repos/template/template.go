package template

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// TemplateRepo owns template nodes. Template ids are node ids.
type TemplateRepo interface {
	Create(dbc dbctx.Context, alias, name, design string) (*types.Template, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Template, error)
	GetByAlias(dbc dbctx.Context, alias string) (*types.Template, error)
	List(dbc dbctx.Context) ([]*types.Template, error)
	Delete(dbc dbctx.Context, id int64) error
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

type templateView struct {
	NodeID int64  `gorm:"column:node_id"`
	Alias  string `gorm:"column:alias"`
	Text   string `gorm:"column:text"`
	Path   string `gorm:"column:path"`
}

func (v templateView) toDomain() *types.Template {
	return &types.Template{ID: v.NodeID, Alias: v.Alias, Name: v.Text, Path: v.Path}
}

func (r *templateRepo) selectView(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db).
		Table("template").
		Select("template.node_id AS node_id, template.alias AS alias, node.text AS text, node.path AS path").
		Joins("JOIN node ON node.id = template.node_id").
		Where("node.node_object_type = ?", types.ObjectTypeTemplate)
}

// Create inserts the template node and its template row. Templates live at
// the root of the node tree.
func (r *templateRepo) Create(dbc dbctx.Context, alias, name, design string) (*types.Template, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, errors.New("template alias is required")
	}
	t := dbc.DB(r.db)
	node := &types.Node{
		Level:          1,
		Path:           types.RootPath,
		Text:           strings.TrimSpace(name),
		UniqueID:       uuid.New(),
		NodeObjectType: types.ObjectTypeTemplate,
		CreatedAt:      time.Now().UTC(),
	}
	if err := t.Create(node).Error; err != nil {
		return nil, err
	}
	path := types.BuildPath(types.RootPath, node.ID)
	if err := t.Model(&types.Node{}).Where("id = ?", node.ID).Update("path", path).Error; err != nil {
		return nil, err
	}
	row := &types.TemplateRow{NodeID: node.ID, Alias: alias, Design: design}
	if err := t.Create(row).Error; err != nil {
		return nil, err
	}
	r.log.Debug("template created", "id", node.ID, "alias", alias)
	return &types.Template{ID: node.ID, Alias: alias, Name: node.Text, Path: path}, nil
}

// GetByID returns nil, nil when no template has id.
func (r *templateRepo) GetByID(dbc dbctx.Context, id int64) (*types.Template, error) {
	if id <= 0 {
		return nil, nil
	}
	var rows []templateView
	if err := r.selectView(dbc).Where("template.node_id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (r *templateRepo) GetByAlias(dbc dbctx.Context, alias string) (*types.Template, error) {
	var rows []templateView
	if err := r.selectView(dbc).
		Where("template.alias = ?", strings.TrimSpace(alias)).
		Order("template.node_id ASC").
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toDomain(), nil
}

func (r *templateRepo) List(dbc dbctx.Context) ([]*types.Template, error) {
	var rows []templateView
	if err := r.selectView(dbc).Order("template.node_id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*types.Template, 0, len(rows))
	for _, v := range rows {
		out = append(out, v.toDomain())
	}
	return out, nil
}

// Delete removes the template and its node. Schema assignments that still
// reference it are left in place and are skipped when schemas are loaded.
func (r *templateRepo) Delete(dbc dbctx.Context, id int64) error {
	t := dbc.DB(r.db)
	if err := t.Where("node_id = ?", id).Delete(&types.TemplateRow{}).Error; err != nil {
		return err
	}
	return t.Where("id = ? AND node_object_type = ?", id, types.ObjectTypeTemplate).Delete(&types.Node{}).Error
}
