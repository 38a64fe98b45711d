package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/aggregates"
	"github.com/yungbote/schemastore/internal/data/cache"
	"github.com/yungbote/schemastore/internal/data/repos"
	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type Repos struct {
	Schemas    domainagg.ContentTypeRepository
	Templates  repos.TemplateRepo
	Dependents repos.NodeDependentsRepo
	// Runner opens the unit of work that callers pass to Schemas.
	Runner aggregates.TxRunner
}

// wireRepos builds the schema repository; a non-nil store wraps it in the
// cached decorator.
func wireRepos(db *gorm.DB, log *logger.Logger, hooks aggregates.Hooks, store cache.Store, ttl time.Duration) Repos {
	log.Info("Wiring repos...")
	runner := aggregates.NewGormTxRunner(db)

	deps := aggregates.NewContentTypeRepositoryDeps(db, log)
	deps.Base.Runner = runner
	deps.Base.Hooks = hooks
	var schemas domainagg.ContentTypeRepository = aggregates.NewContentTypeRepository(deps)
	if store != nil {
		schemas = aggregates.NewCachedContentTypeRepository(aggregates.CachedContentTypeRepositoryDeps{
			Inner: schemas,
			Store: store,
			Edges: deps.Allowed,
			TTL:   ttl,
			Hooks: hooks,
			Log:   log,
		})
	}

	return Repos{
		Schemas:    schemas,
		Templates:  repos.NewTemplateRepo(db, log),
		Dependents: deps.Dependents,
		Runner:     runner,
	}
}
