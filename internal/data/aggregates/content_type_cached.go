package aggregates

import (
	"context"
	"iter"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/schemastore/internal/data/cache"
	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
	"github.com/yungbote/schemastore/internal/pkg/query"
)

// EdgeReader reports allowed-child edges around a schema. It decides whether
// a write can change other cached graphs.
type EdgeReader interface {
	GetChildIDs(dbc dbctx.Context, parentID int64) ([]int64, error)
	GetParentIDs(dbc dbctx.Context, childID int64) ([]int64, error)
}

type CachedContentTypeRepositoryDeps struct {
	Inner domainagg.ContentTypeRepository
	Store cache.Store
	Edges EdgeReader
	TTL   time.Duration
	Hooks Hooks
	Log   *logger.Logger
}

// cachedContentTypeRepository serves Get from a cache of fully loaded
// schema graphs. Reads inside a transaction may hit the cache but never fill
// it, so uncommitted rows are not published to other readers.
type cachedContentTypeRepository struct {
	inner domainagg.ContentTypeRepository
	store cache.Store
	edges EdgeReader
	ttl   time.Duration
	hooks Hooks
	log   *logger.Logger
	group singleflight.Group
}

func NewCachedContentTypeRepository(deps CachedContentTypeRepositoryDeps) domainagg.ContentTypeRepository {
	if deps.Store == nil {
		deps.Store = cache.Nop{}
	}
	if deps.Hooks == nil {
		deps.Hooks = noopHooks{}
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &cachedContentTypeRepository{
		inner: deps.Inner,
		store: deps.Store,
		edges: deps.Edges,
		ttl:   deps.TTL,
		hooks: deps.Hooks,
		log:   deps.Log.With("aggregate", "CachedContentTypeRepository"),
	}
}

func (r *cachedContentTypeRepository) Contract() domainagg.Contract {
	c := r.inner.Contract()
	c.Cached = true
	return c
}

func schemaCacheKey(id int64) string { return "schema:" + strconv.FormatInt(id, 10) }

func (r *cachedContentTypeRepository) Get(dbc dbctx.Context, id int64) (*types.ContentTypeSchema, error) {
	const op = "Schema.ContentType.Get"
	if id <= 0 {
		return nil, nil
	}
	key := schemaCacheKey(id)
	ctx := ctxOf(dbc)

	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache read failed", "key", key, "error", err)
	}
	if found {
		s, err := decodeSchema(raw)
		if err == nil {
			r.hooks.ObserveCacheLookup(op, true)
			return s, nil
		}
		r.log.Warn("dropping undecodable cache entry", "key", key, "error", err)
		_ = r.store.Delete(ctx, key)
	}
	r.hooks.ObserveCacheLookup(op, false)

	if dbc.InTx() {
		return r.inner.Get(dbc, id)
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		s, err := r.inner.Get(dbc, id)
		if err != nil || s == nil {
			return flightResult{}, err
		}
		enc, err := encodeSchema(s)
		if err != nil {
			r.log.Warn("cache encode failed", "key", key, "error", err)
			return flightResult{schema: s}, nil
		}
		if err := r.store.Set(ctx, key, enc, r.ttl); err != nil {
			r.log.Warn("cache write failed", "key", key, "error", err)
		}
		return flightResult{schema: s, enc: enc}, nil
	})
	if err != nil {
		return nil, err
	}
	res, _ := v.(flightResult)
	if len(res.enc) == 0 {
		return res.schema, nil
	}
	// Every caller decodes its own copy so shared results are never aliased.
	return decodeSchema(res.enc)
}

type flightResult struct {
	schema *types.ContentTypeSchema
	enc    []byte
}

func (r *cachedContentTypeRepository) GetAll(dbc dbctx.Context, ids ...int64) iter.Seq2[*types.ContentTypeSchema, error] {
	return func(yield func(*types.ContentTypeSchema, error) bool) {
		if len(ids) == 0 {
			all, err := r.inner.QueryIDs(dbc)
			if err != nil {
				yield(nil, err)
				return
			}
			ids = all
		}
		r.yieldSchemas(dbc, ids, yield)
	}
}

func (r *cachedContentTypeRepository) FindByQuery(dbc dbctx.Context, preds ...query.Predicate) iter.Seq2[*types.ContentTypeSchema, error] {
	return func(yield func(*types.ContentTypeSchema, error) bool) {
		ids, err := r.inner.QueryIDs(dbc, preds...)
		if err != nil {
			yield(nil, err)
			return
		}
		r.yieldSchemas(dbc, ids, yield)
	}
}

func (r *cachedContentTypeRepository) yieldSchemas(dbc dbctx.Context, ids []int64, yield func(*types.ContentTypeSchema, error) bool) {
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

func (r *cachedContentTypeRepository) QueryIDs(dbc dbctx.Context, preds ...query.Predicate) ([]int64, error) {
	return r.inner.QueryIDs(dbc, preds...)
}

func (r *cachedContentTypeRepository) Exists(dbc dbctx.Context, id int64) (bool, error) {
	return r.inner.Exists(dbc, id)
}

func (r *cachedContentTypeRepository) GetByAlias(dbc dbctx.Context, alias string) (*types.ContentTypeSchema, error) {
	ids, err := r.inner.QueryIDs(dbc, query.AliasEquals(alias))
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return r.Get(dbc, ids[0])
}

func (r *cachedContentTypeRepository) PersistNew(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	if err := r.inner.PersistNew(dbc, s); err != nil {
		return err
	}
	r.invalidate(dbc, s.ID, len(s.AllowedContentTypes) > 0)
	return nil
}

func (r *cachedContentTypeRepository) PersistUpdated(dbc dbctx.Context, s *types.ContentTypeSchema) error {
	var hadChildren, moved bool
	var prevPath string
	if s != nil && s.HasIdentity() {
		hadChildren = r.hasEdges(dbc, s.ID, false)
		moved = s.IsPropertyDirty(types.FieldParentID)
		prevPath = s.Path
	}
	if err := r.inner.PersistUpdated(dbc, s); err != nil {
		return err
	}
	// A move rewrites every descendant's path.
	moved = moved || s.Path != prevPath
	r.invalidate(dbc, s.ID, moved || hadChildren || len(s.AllowedContentTypes) > 0)
	return nil
}

func (r *cachedContentTypeRepository) Delete(dbc dbctx.Context, id int64) error {
	related := r.hasEdges(dbc, id, true)
	if err := r.inner.Delete(dbc, id); err != nil {
		return err
	}
	r.invalidate(dbc, id, related)
	return nil
}

// hasEdges reports whether id has allowed children (and, with parents set,
// allowed parents). Lookup failures count as true so the cache is flushed.
func (r *cachedContentTypeRepository) hasEdges(dbc dbctx.Context, id int64, parents bool) bool {
	if r.edges == nil {
		return true
	}
	children, err := r.edges.GetChildIDs(dbc, id)
	if err != nil || len(children) > 0 {
		return true
	}
	if !parents {
		return false
	}
	ps, err := r.edges.GetParentIDs(dbc, id)
	return err != nil || len(ps) > 0
}

// invalidate drops the written schema and, when other cached graphs may
// embed it, everything else.
func (r *cachedContentTypeRepository) invalidate(dbc dbctx.Context, id int64, flush bool) {
	ctx := ctxOf(dbc)
	r.group.Forget(schemaCacheKey(id))
	var err error
	if flush {
		err = r.store.Flush(ctx)
	} else {
		err = r.store.Delete(ctx, schemaCacheKey(id))
	}
	if err != nil {
		r.log.Error("cache invalidation failed", "id", id, "flush", flush, "error", err)
	}
}

func ctxOf(dbc dbctx.Context) context.Context {
	if dbc.Ctx == nil {
		return context.Background()
	}
	return dbc.Ctx
}
