package aggregates

import (
	"iter"

	"github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/query"
)

var ContentTypeRepositoryContract = Contract{
	Name:             "Schema.ContentTypeRepository",
	WriteTxOwnership: WriteTxOwnedByCaller,
	ReadPolicy:       ReadPolicyFullAggregate,
	Notes: "Loads and persists the content-type schema aggregate across node, content_type, " +
		"document_type, property and relation tables inside the caller's unit of work.",
}

// ContentTypeRepository loads, persists and deletes content-type schemas.
//
// Failures are *aggregates.Error values with codes:
// CodeValidation, CodeInvariantViolation, CodeDanglingReference, CodeConflict,
// CodeRetryable, CodeInternal. A missing schema is not an error: Get returns nil.
type ContentTypeRepository interface {
	Aggregate

	// Get fully loads one schema, including allowed parents. Returns nil, nil when absent.
	Get(dbc dbctx.Context, id int64) (*contenttype.ContentTypeSchema, error)

	// GetAll lazily loads the given ids, or every schema when none are given.
	GetAll(dbc dbctx.Context, ids ...int64) iter.Seq2[*contenttype.ContentTypeSchema, error]

	// FindByQuery loads every distinct schema matching preds.
	FindByQuery(dbc dbctx.Context, preds ...query.Predicate) iter.Seq2[*contenttype.ContentTypeSchema, error]

	// QueryIDs returns distinct schema ids matching preds in first-seen order.
	QueryIDs(dbc dbctx.Context, preds ...query.Predicate) ([]int64, error)

	Exists(dbc dbctx.Context, id int64) (bool, error)
	GetByAlias(dbc dbctx.Context, alias string) (*contenttype.ContentTypeSchema, error)

	// PersistNew inserts a transient schema and assigns its identity.
	PersistNew(dbc dbctx.Context, s *contenttype.ContentTypeSchema) error

	// PersistUpdated writes a persisted schema, replacing template assignments.
	PersistUpdated(dbc dbctx.Context, s *contenttype.ContentTypeSchema) error

	// Delete removes the schema and every dependent row.
	Delete(dbc dbctx.Context, id int64) error
}

// TemplateProvider resolves template references. Unknown ids yield nil, nil.
type TemplateProvider interface {
	GetByID(dbc dbctx.Context, id int64) (*contenttype.Template, error)
}
