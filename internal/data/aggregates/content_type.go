package aggregates

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/repos"
	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
	"github.com/yungbote/schemastore/internal/pkg/query"
)

type ContentTypeRepositoryDeps struct {
	Base BaseDeps

	Nodes          repos.NodeRepo
	ContentTypes   repos.ContentTypeRepo
	DocumentTypes  repos.DocumentTypeRepo
	PropertyGroups repos.PropertyGroupRepo
	PropertyTypes  repos.PropertyTypeRepo
	Allowed        repos.AllowedContentTypeRepo
	Links          repos.ContentTypeLinkRepo
	Dependents     repos.NodeDependentsRepo
	Projection     repos.ProjectionRepo
	Templates      domainagg.TemplateProvider
}

// NewContentTypeRepositoryDeps wires every table repo over db. Templates are
// served by the template repo unless the caller replaces them.
func NewContentTypeRepositoryDeps(db *gorm.DB, baseLog *logger.Logger) ContentTypeRepositoryDeps {
	return ContentTypeRepositoryDeps{
		Base:           BaseDeps{DB: db, Log: baseLog},
		Nodes:          repos.NewNodeRepo(db, baseLog),
		ContentTypes:   repos.NewContentTypeRepo(db, baseLog),
		DocumentTypes:  repos.NewDocumentTypeRepo(db, baseLog),
		PropertyGroups: repos.NewPropertyGroupRepo(db, baseLog),
		PropertyTypes:  repos.NewPropertyTypeRepo(db, baseLog),
		Allowed:        repos.NewAllowedContentTypeRepo(db, baseLog),
		Links:          repos.NewContentTypeLinkRepo(db, baseLog),
		Dependents:     repos.NewNodeDependentsRepo(db, baseLog),
		Projection:     repos.NewProjectionRepo(db, baseLog),
		Templates:      repos.NewTemplateRepo(db, baseLog),
	}
}

type contentTypeRepository struct {
	deps ContentTypeRepositoryDeps
	log  *logger.Logger
}

func NewContentTypeRepository(deps ContentTypeRepositoryDeps) domainagg.ContentTypeRepository {
	deps.Base = deps.Base.withDefaults()
	log := deps.Base.Log
	if log == nil {
		log = logger.Nop()
	}
	return &contentTypeRepository{deps: deps, log: log.With("aggregate", "ContentTypeRepository")}
}

func (r *contentTypeRepository) Contract() domainagg.Contract {
	return domainagg.ContentTypeRepositoryContract
}

func (r *contentTypeRepository) Get(dbc dbctx.Context, id int64) (*types.ContentTypeSchema, error) {
	const op = "Schema.ContentType.Get"
	if id <= 0 {
		return nil, nil
	}
	var out *types.ContentTypeSchema
	err := executeRead(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		s, err := r.load(dbc, id, schemaArena{})
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("schema loaded", "id", id, "found", out != nil)
	return out, nil
}

// GetAll yields schemas for ids in order, skipping ids that do not exist.
// With no ids it yields every schema. Iteration stops after the first error.
func (r *contentTypeRepository) GetAll(dbc dbctx.Context, ids ...int64) iter.Seq2[*types.ContentTypeSchema, error] {
	const op = "Schema.ContentType.GetAll"
	return func(yield func(*types.ContentTypeSchema, error) bool) {
		if len(ids) == 0 {
			err := executeRead(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
				all, err := r.deps.Nodes.ListIDsByObjectType(dbc, types.ObjectTypeDocumentType)
				ids = all
				return err
			})
			if err != nil {
				yield(nil, err)
				return
			}
		}
		r.yieldSchemas(dbc, ids, yield)
	}
}

func (r *contentTypeRepository) FindByQuery(dbc dbctx.Context, preds ...query.Predicate) iter.Seq2[*types.ContentTypeSchema, error] {
	return func(yield func(*types.ContentTypeSchema, error) bool) {
		ids, err := r.QueryIDs(dbc, preds...)
		if err != nil {
			yield(nil, err)
			return
		}
		r.yieldSchemas(dbc, ids, yield)
	}
}

func (r *contentTypeRepository) yieldSchemas(dbc dbctx.Context, ids []int64, yield func(*types.ContentTypeSchema, error) bool) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s, err := r.Get(dbc, id)
		if err != nil {
			yield(nil, err)
			return
		}
		if s == nil {
			continue
		}
		if !yield(s, nil) {
			return
		}
	}
}

func (r *contentTypeRepository) QueryIDs(dbc dbctx.Context, preds ...query.Predicate) ([]int64, error) {
	const op = "Schema.ContentType.QueryIDs"
	var out []int64
	err := executeRead(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		ids, err := r.deps.Projection.IDs(dbc, preds...)
		out = ids
		return err
	})
	return out, err
}

func (r *contentTypeRepository) Exists(dbc dbctx.Context, id int64) (bool, error) {
	const op = "Schema.ContentType.Exists"
	if id <= 0 {
		return false, nil
	}
	var found bool
	err := executeRead(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := r.deps.Nodes.GetByIDAndObjectType(dbc, id, types.ObjectTypeDocumentType)
		found = n != nil
		return err
	})
	return found, err
}

func (r *contentTypeRepository) GetByAlias(dbc dbctx.Context, alias string) (*types.ContentTypeSchema, error) {
	const op = "Schema.ContentType.GetByAlias"
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing alias", nil)
	}
	var id int64
	err := executeRead(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		v, err := r.deps.ContentTypes.GetNodeIDByAlias(dbc, alias)
		id = v
		return err
	})
	if err != nil || id == 0 {
		return nil, err
	}
	return r.Get(dbc, id)
}

func (r *contentTypeRepository) PersistNew(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	const op = "Schema.ContentType.PersistNew"
	if err := checkWritable(op, s); err != nil {
		return err
	}
	if s.HasIdentity() {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("schema %d is already persisted", s.ID), nil)
	}

	prev := *s
	err := executeWrite(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		return r.insert(dbc, s)
	})
	if err != nil {
		restoreIdentity(s, &prev)
		return err
	}
	s.ResetDirtyProperties()
	r.log.Info("schema created", "id", s.ID, "alias", s.Alias)
	return nil
}

func (r *contentTypeRepository) PersistUpdated(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	const op = "Schema.ContentType.PersistUpdated"
	if err := checkWritable(op, s); err != nil {
		return err
	}
	if !s.HasIdentity() {
		return domainagg.NewError(domainagg.CodeValidation, op, "schema has no identity; use PersistNew", nil)
	}

	prev := *s
	err := executeWrite(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		return r.update(dbc, s)
	})
	if err != nil {
		restoreIdentity(s, &prev)
		return err
	}
	s.ResetDirtyProperties()
	r.log.Info("schema updated", "id", s.ID, "alias", s.Alias)
	return nil
}

// Delete removes the schema and its dependent rows. Deleting an unknown id is
// a no-op. A schema that still has child nodes cannot be deleted.
func (r *contentTypeRepository) Delete(dbc dbctx.Context, id int64) error {
	const op = "Schema.ContentType.Delete"
	if id <= 0 {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing id", nil)
	}
	err := executeWrite(dbc, r.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := r.deps.Nodes.GetByIDAndObjectType(dbc, id, types.ObjectTypeDocumentType)
		if err != nil || n == nil {
			return err
		}
		children, err := r.deps.Nodes.CountChildren(dbc, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return domainagg.NewError(domainagg.CodePreconditionFailed, op,
				fmt.Sprintf("schema %d still has %d child nodes", id, children), nil)
		}
		for _, step := range r.planCascadeDelete(id) {
			if err := step.run(dbc); err != nil {
				return fmt.Errorf("delete from %s: %w", step.Table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("schema deleted", "id", id)
	return nil
}

func checkWritable(op string, s *types.ContentTypeSchema) error {
	if s == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing schema", nil)
	}
	if err := s.Validate(); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if err := s.ValidateTemplates(); err != nil {
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, err.Error(), err)
	}
	return nil
}

// restoreIdentity undoes storage-assigned fields after a failed write; the
// caller's transaction is expected to roll back.
func restoreIdentity(s, prev *types.ContentTypeSchema) {
	s.ID = prev.ID
	s.UniqueID = prev.UniqueID
	s.Level = prev.Level
	s.Path = prev.Path
	s.SortOrder = prev.SortOrder
	s.CreateDate = prev.CreateDate
	s.UpdateDate = prev.UpdateDate
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// placement returns the parent pointer, parent path, level and whether the
// parent is itself a schema.
func (r *contentTypeRepository) placement(dbc dbctx.Context, parentID int64) (*int64, string, int, bool, error) {
	if parentID <= 0 {
		return nil, types.RootPath, 1, false, nil
	}
	parent, err := r.deps.Nodes.GetByID(dbc, parentID)
	if err != nil {
		return nil, "", 0, false, err
	}
	if parent == nil {
		return nil, "", 0, false, DanglingReferenceError(fmt.Sprintf("parent node %d does not exist", parentID))
	}
	pid := parent.ID
	return &pid, parent.Path, parent.Level + 1, parent.NodeObjectType == types.ObjectTypeDocumentType, nil
}

func (r *contentTypeRepository) insert(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	parentPtr, parentPath, level, parentIsSchema, err := r.placement(dbc, s.ParentID)
	if err != nil {
		return err
	}
	maxSort, err := r.deps.Nodes.MaxSortOrder(dbc, parentPtr, types.ObjectTypeDocumentType)
	if err != nil {
		return err
	}

	ts := now()
	if s.CreateDate.IsZero() {
		s.CreateDate = ts
	}
	s.UpdateDate = ts
	if s.UniqueID == uuid.Nil {
		s.UniqueID = uuid.New()
	}
	s.Level = level
	s.SortOrder = maxSort + 1

	node := &types.Node{
		ParentID:       parentPtr,
		Level:          s.Level,
		Path:           parentPath,
		SortOrder:      s.SortOrder,
		Trashed:        s.Trashed,
		Text:           s.Name,
		UniqueID:       s.UniqueID,
		NodeObjectType: types.ObjectTypeDocumentType,
		CreatedAt:      s.CreateDate,
	}
	if s.CreatorID > 0 {
		creator := s.CreatorID
		node.UserID = &creator
	}
	if err := r.deps.Nodes.Create(dbc, node); err != nil {
		return err
	}
	s.ID = node.ID
	s.Path = types.BuildPath(parentPath, s.ID)
	if err := r.deps.Nodes.UpdateFields(dbc, s.ID, map[string]interface{}{"path": s.Path}); err != nil {
		return err
	}

	if err := r.deps.ContentTypes.Create(dbc, &types.ContentTypeRow{
		NodeID:      s.ID,
		Alias:       s.Alias,
		Icon:        s.Icon,
		Thumbnail:   s.Thumbnail,
		Description: s.Description,
		IsContainer: s.IsContainer,
		AllowAtRoot: s.AllowAtRoot,
		CreatedAt:   s.CreateDate,
		UpdatedAt:   s.UpdateDate,
	}); err != nil {
		return err
	}
	if err := r.writeTemplateAssignments(dbc, s, false); err != nil {
		return err
	}
	if err := r.syncProperties(dbc, s, false); err != nil {
		return err
	}
	if err := r.writeAllowedChildren(dbc, s, false); err != nil {
		return err
	}
	return r.writeParentLink(dbc, s, parentIsSchema, false)
}

func (r *contentTypeRepository) update(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	const op = "Schema.ContentType.PersistUpdated"
	stored, err := r.deps.Nodes.GetByIDAndObjectType(dbc, s.ID, types.ObjectTypeDocumentType)
	if err != nil {
		return err
	}
	if stored == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("schema %d not found", s.ID), nil)
	}
	var storedParent int64
	if stored.ParentID != nil {
		storedParent = *stored.ParentID
	}

	parentPtr, parentPath, level, parentIsSchema, err := r.placement(dbc, s.ParentID)
	if err != nil {
		return err
	}
	moved := s.IsPropertyDirty(types.FieldParentID) || storedParent != s.ParentID
	if moved {
		for _, ancestor := range types.PathIDs(parentPath) {
			if ancestor == s.ID {
				return InvariantError(fmt.Sprintf("schema %d cannot move below its own descendant", s.ID))
			}
		}
		if !s.IsPropertyDirty(types.FieldSortOrder) && storedParent != s.ParentID {
			maxSort, err := r.deps.Nodes.MaxSortOrder(dbc, parentPtr, types.ObjectTypeDocumentType)
			if err != nil {
				return err
			}
			s.SortOrder = maxSort + 1
		}
		s.Level = level
		s.Path = types.BuildPath(parentPath, s.ID)
		if err := r.deps.Nodes.RebaseDescendants(dbc, stored.Path, s.Path, s.Level-stored.Level); err != nil {
			return err
		}
	} else {
		s.Level = stored.Level
		s.Path = stored.Path
	}

	if err := r.deps.Nodes.UpdateFields(dbc, s.ID, map[string]interface{}{
		"parent_id":  parentPtr,
		"level":      s.Level,
		"path":       s.Path,
		"sort_order": s.SortOrder,
		"trashed":    s.Trashed,
		"text":       s.Name,
	}); err != nil {
		return err
	}

	ts := now()
	ctUpdates := map[string]interface{}{
		"alias":         s.Alias,
		"icon":          s.Icon,
		"thumbnail":     s.Thumbnail,
		"description":   s.Description,
		"is_container":  s.IsContainer,
		"allow_at_root": s.AllowAtRoot,
		"updated_at":    ts,
	}
	if s.UpdateDate.IsZero() {
		if err := r.deps.ContentTypes.UpdateByNodeID(dbc, s.ID, ctUpdates); err != nil {
			return err
		}
	} else {
		ok, err := r.deps.Base.CASGuard.UpdateIfUnmodifiedSince(dbc, "content_type", "node_id", s.ID, s.UpdateDate, ctUpdates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, fmt.Sprintf("schema %d was modified after it was loaded", s.ID)); err != nil {
			return err
		}
	}
	s.UpdateDate = ts

	if err := r.writeTemplateAssignments(dbc, s, true); err != nil {
		return err
	}
	if err := r.syncProperties(dbc, s, true); err != nil {
		return err
	}
	if err := r.writeAllowedChildren(dbc, s, true); err != nil {
		return err
	}
	return r.writeParentLink(dbc, s, parentIsSchema, true)
}

// syncProperties writes groups and property types. Existing rows keep their
// ids; rows no longer present on the schema are deleted.
func (r *contentTypeRepository) syncProperties(dbc dbctx.Context, s *types.ContentTypeSchema, existing bool) error {
	storedGroups := map[int64]struct{}{}
	storedTypes := map[int64]struct{}{}
	if existing {
		groups, err := r.deps.PropertyGroups.GetByContentTypeNodeID(dbc, s.ID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			storedGroups[g.ID] = struct{}{}
		}
		ptypes, err := r.deps.PropertyTypes.GetByContentTypeID(dbc, s.ID)
		if err != nil {
			return err
		}
		for _, pt := range ptypes {
			storedTypes[pt.ID] = struct{}{}
		}
	}

	keepTypes := map[int64]struct{}{}
	for _, pt := range s.PropertyTypes() {
		if _, ok := storedTypes[pt.ID]; ok {
			keepTypes[pt.ID] = struct{}{}
		}
	}
	if err := r.deps.PropertyTypes.DeleteByIDs(dbc, missingIDs(storedTypes, keepTypes)); err != nil {
		return err
	}

	keepGroups := map[int64]struct{}{}
	for _, g := range s.PropertyGroups {
		if g == nil {
			continue
		}
		row := &types.PropertyGroupRow{ContentTypeNodeID: s.ID, Text: g.Name, SortOrder: g.SortOrder}
		if _, ok := storedGroups[g.ID]; ok {
			row.ID = g.ID
			if err := r.deps.PropertyGroups.Update(dbc, row); err != nil {
				return err
			}
		} else {
			if err := r.deps.PropertyGroups.Create(dbc, row); err != nil {
				return err
			}
			g.ID = row.ID
		}
		keepGroups[g.ID] = struct{}{}
		for _, pt := range g.PropertyTypes {
			if pt != nil {
				pt.GroupID = g.ID
			}
		}
	}
	if err := r.deps.PropertyGroups.DeleteByIDs(dbc, missingIDs(storedGroups, keepGroups)); err != nil {
		return err
	}

	for _, pt := range s.NoGroupPropertyTypes {
		if pt != nil {
			pt.GroupID = 0
		}
	}
	for _, pt := range s.PropertyTypes() {
		row := propertyTypeRow(s.ID, pt)
		if _, ok := keepTypes[pt.ID]; ok {
			if err := r.deps.PropertyTypes.Update(dbc, row); err != nil {
				return err
			}
			continue
		}
		row.ID = 0
		if err := r.deps.PropertyTypes.Create(dbc, row); err != nil {
			return err
		}
		pt.ID = row.ID
	}
	return nil
}

func propertyTypeRow(schemaID int64, pt *types.PropertyType) *types.PropertyTypeRow {
	row := &types.PropertyTypeRow{
		ID:                  pt.ID,
		ContentTypeID:       schemaID,
		DataTypeID:          pt.DataTypeID,
		PropertyEditorAlias: pt.PropertyEditorAlias,
		Alias:               pt.Alias,
		Name:                pt.Name,
		Description:         pt.Description,
		Mandatory:           pt.Mandatory,
		ValidationRegExp:    pt.ValidationRegExp,
		SortOrder:           pt.SortOrder,
		Config:              pt.Config,
	}
	if pt.GroupID > 0 {
		gid := pt.GroupID
		row.PropertyTypeGroupID = &gid
	}
	return row
}

func missingIDs(stored, keep map[int64]struct{}) []int64 {
	var out []int64
	for id := range stored {
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// writeAllowedChildren stores allowed-child edges with sort order = position.
func (r *contentTypeRepository) writeAllowedChildren(dbc dbctx.Context, s *types.ContentTypeSchema, replace bool) error {
	if replace {
		if err := r.deps.Allowed.DeleteByParentID(dbc, s.ID); err != nil {
			return err
		}
	}
	ids := uniqueIDs(s.AllowedContentTypes)
	existing, err := r.deps.Nodes.ExistingIDs(dbc, ids, types.ObjectTypeDocumentType)
	if err != nil {
		return err
	}
	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return DanglingReferenceError(fmt.Sprintf("allowed child %d is not a schema", id))
		}
	}
	s.AllowedContentTypes = ids

	rows := make([]*types.AllowedContentTypeRow, 0, len(ids))
	for i, childID := range ids {
		rows = append(rows, &types.AllowedContentTypeRow{
			ParentContentTypeID:  s.ID,
			AllowedContentTypeID: childID,
			SortOrder:            i,
		})
	}
	return r.deps.Allowed.Create(dbc, rows)
}

// writeParentLink keeps one content_type2content_type row when the parent
// node is itself a schema.
func (r *contentTypeRepository) writeParentLink(dbc dbctx.Context, s *types.ContentTypeSchema, parentIsSchema, replace bool) error {
	if replace {
		if err := r.deps.Links.DeleteByChildID(dbc, s.ID); err != nil {
			return err
		}
	}
	if !parentIsSchema || s.ParentID <= 0 {
		return nil
	}
	return r.deps.Links.Create(dbc, &types.ContentTypeLinkRow{ParentContentTypeID: s.ParentID, ChildContentTypeID: s.ID})
}
