// Package aggregates implements the domain aggregate contracts on top of the
// table-level repos in internal/data/repos.
//
// The content-type schema repository assembles one aggregate from a flat join
// projection plus follow-up lookups, and writes it back across the node,
// content_type, document_type, property and relation tables inside the
// caller's unit of work.
package aggregates
