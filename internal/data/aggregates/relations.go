package aggregates

import (
	"fmt"
	"sort"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

// schemaArena holds every schema materialized during one top-level load,
// keyed by id. A schema is registered before its parents are resolved, so a
// cycle in the allowed graph resolves to the already-registered pointer.
type schemaArena map[int64]*types.ContentTypeSchema

// load returns the fully loaded schema for id, reusing the arena entry when
// present. It returns nil when no schema has id.
func (r *contentTypeRepository) load(dbc dbctx.Context, id int64, arena schemaArena) (*types.ContentTypeSchema, error) {
	if s, ok := arena[id]; ok {
		return s, nil
	}
	rows, err := r.deps.Projection.RowsByID(dbc, id)
	if err != nil {
		return nil, err
	}
	s, err := r.assemble(dbc, rows)
	if err != nil || s == nil {
		return nil, err
	}
	arena[id] = s
	if err := r.resolveAllowedParents(dbc, s, arena); err != nil {
		return nil, err
	}
	s.ResetDirtyProperties()
	return s, nil
}

// resolveAllowedParents loads every schema that lists s as an allowed child.
// Parents are deduplicated and ordered by id.
func (r *contentTypeRepository) resolveAllowedParents(dbc dbctx.Context, s *types.ContentTypeSchema, arena schemaArena) error {
	parentIDs, err := r.deps.Allowed.GetParentIDs(dbc, s.ID)
	if err != nil {
		return fmt.Errorf("load allowed parents: %w", err)
	}
	parentIDs = uniqueSorted(parentIDs)

	parents := make([]*types.ContentTypeSchema, 0, len(parentIDs))
	for _, pid := range parentIDs {
		p, err := r.load(dbc, pid, arena)
		if err != nil {
			return err
		}
		if p == nil {
			return DanglingReferenceError(fmt.Sprintf("schema %d is allowed under missing schema %d", s.ID, pid))
		}
		parents = append(parents, p)
	}
	s.AllowedParents = parents
	return nil
}

// uniqueIDs drops non-positive ids and repeats, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
