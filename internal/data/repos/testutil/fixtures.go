package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/schemastore/internal/domain/contenttype"
)

// SeedSchemaNode inserts a bare schema (node + content_type row) at the root
// and returns its node id.
func SeedSchemaNode(tb testing.TB, ctx context.Context, tx *gorm.DB, alias string) int64 {
	tb.Helper()
	now := time.Now().UTC()
	n := &types.Node{
		Level:          1,
		Path:           types.RootPath,
		Text:           alias,
		UniqueID:       uuid.New(),
		NodeObjectType: types.ObjectTypeDocumentType,
		CreatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	if err := tx.WithContext(ctx).Model(&types.Node{}).
		Where("id = ?", n.ID).
		Update("path", types.BuildPath(types.RootPath, n.ID)).Error; err != nil {
		tb.Fatalf("seed node path: %v", err)
	}
	ct := &types.ContentTypeRow{NodeID: n.ID, Alias: alias, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(ct).Error; err != nil {
		tb.Fatalf("seed content type: %v", err)
	}
	return n.ID
}

// SeedTemplateNode inserts a template node + template row and returns its id.
func SeedTemplateNode(tb testing.TB, ctx context.Context, tx *gorm.DB, alias string) int64 {
	tb.Helper()
	n := &types.Node{
		Level:          1,
		Path:           types.RootPath,
		Text:           alias,
		UniqueID:       uuid.New(),
		NodeObjectType: types.ObjectTypeTemplate,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed template node: %v", err)
	}
	if err := tx.WithContext(ctx).Create(&types.TemplateRow{NodeID: n.ID, Alias: alias}).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return n.ID
}

func SeedAllowed(tb testing.TB, ctx context.Context, tx *gorm.DB, parentID, childID int64, sortOrder int) {
	tb.Helper()
	row := &types.AllowedContentTypeRow{ParentContentTypeID: parentID, AllowedContentTypeID: childID, SortOrder: sortOrder}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed allowed: %v", err)
	}
}

func SeedDocumentType(tb testing.TB, ctx context.Context, tx *gorm.DB, schemaID, templateID int64, isDefault bool) {
	tb.Helper()
	row := &types.DocumentTypeRow{ContentTypeNodeID: schemaID, TemplateNodeID: templateID, IsDefault: isDefault}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed document type: %v", err)
	}
}

func PtrInt64(v int64) *int64 { return &v }
