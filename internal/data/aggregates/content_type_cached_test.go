package aggregates_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/aggregates"
	aggtest "github.com/yungbote/schemastore/internal/data/aggregates/testutil"
	"github.com/yungbote/schemastore/internal/data/cache"
	repotest "github.com/yungbote/schemastore/internal/data/repos/testutil"
	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	types "github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

type cachedFixture struct {
	db    *gorm.DB
	dbc   dbctx.Context
	repo  domainagg.ContentTypeRepository
	store *cache.Memory
	hooks *aggtest.HooksRecorder
	ids   []int64
}

// newCachedFixture commits through the repository's own transactions so
// reads outside a transaction can populate the cache.
func newCachedFixture(t *testing.T) *cachedFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	deps := aggregates.NewContentTypeRepositoryDeps(db, log)
	store := cache.NewMemory()
	hooks := &aggtest.HooksRecorder{}
	f := &cachedFixture{
		db:  db,
		dbc: dbctx.New(context.Background(), nil),
		repo: aggregates.NewCachedContentTypeRepository(aggregates.CachedContentTypeRepositoryDeps{
			Inner: aggregates.NewContentTypeRepository(deps),
			Store: store,
			Edges: deps.Allowed,
			TTL:   time.Minute,
			Hooks: hooks,
			Log:   log,
		}),
		store: store,
		hooks: hooks,
	}
	t.Cleanup(func() {
		for i := len(f.ids) - 1; i >= 0; i-- {
			_ = f.repo.Delete(f.dbc, f.ids[i])
		}
	})
	return f
}

func (f *cachedFixture) persist(t *testing.T, s *types.ContentTypeSchema) *types.ContentTypeSchema {
	t.Helper()
	if err := f.repo.PersistNew(f.dbc, s); err != nil {
		t.Fatalf("PersistNew(%s): %v", s.Alias, err)
	}
	f.ids = append(f.ids, s.ID)
	return s
}

func (f *cachedFixture) get(t *testing.T, dbc dbctx.Context, id int64) *types.ContentTypeSchema {
	t.Helper()
	s, err := f.repo.Get(dbc, id)
	if err != nil {
		t.Fatalf("Get(%d): %v", id, err)
	}
	if s == nil {
		t.Fatalf("Get(%d): want schema, got nil", id)
	}
	return s
}

func TestCachedContentTypeRepositoryHitsAfterMiss(t *testing.T) {
	f := newCachedFixture(t)
	s := f.persist(t, types.New("cached", "Cached"))

	first := f.get(t, f.dbc, s.ID)
	second := f.get(t, f.dbc, s.ID)
	if first == second {
		t.Fatalf("cache must hand out independent copies")
	}
	hits, misses := f.hooks.Snapshot()
	if len(misses) != 1 || len(hits) != 1 {
		t.Fatalf("lookups: want 1 miss + 1 hit, got misses=%d hits=%d", len(misses), len(hits))
	}
	if f.store.Size() != 1 {
		t.Fatalf("store size: want=1 got=%d", f.store.Size())
	}

	second.Name = "mutated locally"
	if third := f.get(t, f.dbc, s.ID); third.Name != "Cached" {
		t.Fatalf("cached entry aliased caller copy: got name=%s", third.Name)
	}
	if !f.repo.Contract().Cached {
		t.Fatalf("contract: want Cached")
	}
}

func TestCachedContentTypeRepositoryInvalidatesOnUpdate(t *testing.T) {
	f := newCachedFixture(t)
	s := f.persist(t, types.New("page", "Page"))

	loaded := f.get(t, f.dbc, s.ID)
	loaded.SetName("Page v2")
	if err := f.repo.PersistUpdated(f.dbc, loaded); err != nil {
		t.Fatalf("PersistUpdated: %v", err)
	}
	if got := f.get(t, f.dbc, s.ID); got.Name != "Page v2" {
		t.Fatalf("after update: want=Page v2 got=%s", got.Name)
	}
}

func TestCachedContentTypeRepositoryFlushesRelatedGraphs(t *testing.T) {
	f := newCachedFixture(t)
	child := f.persist(t, types.New("child", "Child"))
	parent := types.New("parent", "Parent")
	parent.AllowedContentTypes = []int64{child.ID}
	f.persist(t, parent)

	cachedChild := f.get(t, f.dbc, child.ID)
	if p := cachedChild.AllowedParent(parent.ID); p == nil || p.Name != "Parent" {
		t.Fatalf("child: want allowed parent Parent, got=%v", cachedChild.AllowedParentIDs())
	}

	loaded := f.get(t, f.dbc, parent.ID)
	loaded.SetName("Renamed parent")
	if err := f.repo.PersistUpdated(f.dbc, loaded); err != nil {
		t.Fatalf("PersistUpdated: %v", err)
	}

	got := f.get(t, f.dbc, child.ID)
	if p := got.AllowedParent(parent.ID); p == nil || p.Name != "Renamed parent" {
		t.Fatalf("child after parent rename: want fresh parent, got=%+v", p)
	}
}

func TestCachedContentTypeRepositoryMoveRefreshesDescendants(t *testing.T) {
	f := newCachedFixture(t)
	q := f.persist(t, types.New("archive", "Archive"))
	p := f.persist(t, types.New("section", "Section"))
	c := types.New("article", "Article")
	c.ParentID = p.ID
	f.persist(t, c)

	if got := f.get(t, f.dbc, c.ID); got.Path != types.BuildPath(p.Path, c.ID) {
		t.Fatalf("child path before move: want=%s got=%s", types.BuildPath(p.Path, c.ID), got.Path)
	}

	loaded := f.get(t, f.dbc, p.ID)
	loaded.SetParentID(q.ID)
	if err := f.repo.PersistUpdated(f.dbc, loaded); err != nil {
		t.Fatalf("PersistUpdated(move): %v", err)
	}

	want := types.BuildPath(types.BuildPath(q.Path, p.ID), c.ID)
	got := f.get(t, f.dbc, c.ID)
	if got.Path != want {
		t.Fatalf("child path after move: want=%s got=%s", want, got.Path)
	}
	if got.Level != 3 {
		t.Fatalf("child level after move: want=3 got=%d", got.Level)
	}
}

func TestCachedContentTypeRepositoryDeleteEvicts(t *testing.T) {
	f := newCachedFixture(t)
	s := f.persist(t, types.New("temp", "Temp"))
	_ = f.get(t, f.dbc, s.ID)

	if err := f.repo.Delete(f.dbc, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := f.repo.Get(f.dbc, s.ID)
	if err != nil || got != nil {
		t.Fatalf("Get after delete: want nil,nil got=%v,%v", got, err)
	}
	if f.store.Size() != 0 {
		t.Fatalf("store: missing schemas must not be cached, size=%d", f.store.Size())
	}
}

func TestCachedContentTypeRepositoryTxReadsDoNotFill(t *testing.T) {
	f := newCachedFixture(t)
	s := f.persist(t, types.New("txread", "Tx read"))
	if err := f.store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	inTx := dbctx.New(context.Background(), repotest.Tx(t, f.db))
	if got, err := f.repo.Get(inTx, s.ID); err != nil || got == nil {
		t.Fatalf("Get in tx: got=%v err=%v", got, err)
	}
	if f.store.Size() != 0 {
		t.Fatalf("store: tx reads must not fill the cache, size=%d", f.store.Size())
	}
}
