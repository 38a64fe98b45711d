package db

import (
	"fmt"

	"github.com/yungbote/schemastore/internal/domain/contenttype"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(contenttype.AllModels()...); err != nil {
		return err
	}
	return EnsureSchemaIndexes(db)
}

// EnsureSchemaIndexes creates indexes gorm tags cannot express. The partial
// unique index keeps at most one default template per schema.
func EnsureSchemaIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_document_type_single_default
		ON document_type (content_type_node_id)
		WHERE is_default;
	`).Error; err != nil {
		return fmt.Errorf("create idx_document_type_single_default: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_node_object_type_parent
		ON node (node_object_type, parent_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_node_object_type_parent: %w", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_property_type_schema_alias
		ON property_type (content_type_id, alias);
	`).Error; err != nil {
		return fmt.Errorf("create idx_property_type_schema_alias: %w", err)
	}

	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating schema store tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
