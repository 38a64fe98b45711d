// Package query holds the filter predicates accepted by the content-type
// repository. A Predicate is a gorm scope applied to the projection join of
// node, content_type and document_type, so columns must be table-qualified.
package query

import (
	"strings"

	"gorm.io/gorm"
)

// Predicate narrows the projection query.
type Predicate func(db *gorm.DB) *gorm.DB

// Apply folds preds onto db, skipping nil entries.
func Apply(db *gorm.DB, preds ...Predicate) *gorm.DB {
	for _, p := range preds {
		if p == nil {
			continue
		}
		db = p(db)
	}
	return db
}

func AliasEquals(alias string) Predicate {
	alias = strings.TrimSpace(alias)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_type.alias = ?", alias)
	}
}

func AliasIn(aliases ...string) Predicate {
	clean := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	return func(db *gorm.DB) *gorm.DB {
		if len(clean) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("content_type.alias IN ?", clean)
	}
}

// NameContains matches node text case-insensitively.
func NameContains(fragment string) Predicate {
	pattern := "%" + strings.ToLower(strings.TrimSpace(fragment)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(node.text) LIKE ?", pattern)
	}
}

// ParentIs matches direct children of parentID; 0 matches root-level schemas.
func ParentIs(parentID int64) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		if parentID == 0 {
			return db.Where("node.parent_id IS NULL")
		}
		return db.Where("node.parent_id = ?", parentID)
	}
}

func AllowedAtRoot(v bool) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_type.allow_at_root = ?", v)
	}
}

func IsContainer(v bool) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_type.is_container = ?", v)
	}
}

// UsesTemplate matches schemas with templateID in their allowed set.
func UsesTemplate(templateID int64) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("document_type.template_node_id = ?", templateID)
	}
}
