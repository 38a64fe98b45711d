package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/repos/contenttype"
	"github.com/yungbote/schemastore/internal/data/repos/template"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

type NodeRepo = contenttype.NodeRepo
type ContentTypeRepo = contenttype.ContentTypeRepo
type DocumentTypeRepo = contenttype.DocumentTypeRepo
type PropertyGroupRepo = contenttype.PropertyGroupRepo
type PropertyTypeRepo = contenttype.PropertyTypeRepo
type AllowedContentTypeRepo = contenttype.AllowedContentTypeRepo
type ContentTypeLinkRepo = contenttype.ContentTypeLinkRepo
type NodeDependentsRepo = contenttype.NodeDependentsRepo
type ProjectionRepo = contenttype.ProjectionRepo

type TemplateRepo = template.TemplateRepo

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return contenttype.NewNodeRepo(db, baseLog)
}
func NewContentTypeRepo(db *gorm.DB, baseLog *logger.Logger) ContentTypeRepo {
	return contenttype.NewContentTypeRepo(db, baseLog)
}
func NewDocumentTypeRepo(db *gorm.DB, baseLog *logger.Logger) DocumentTypeRepo {
	return contenttype.NewDocumentTypeRepo(db, baseLog)
}
func NewPropertyGroupRepo(db *gorm.DB, baseLog *logger.Logger) PropertyGroupRepo {
	return contenttype.NewPropertyGroupRepo(db, baseLog)
}
func NewPropertyTypeRepo(db *gorm.DB, baseLog *logger.Logger) PropertyTypeRepo {
	return contenttype.NewPropertyTypeRepo(db, baseLog)
}
func NewAllowedContentTypeRepo(db *gorm.DB, baseLog *logger.Logger) AllowedContentTypeRepo {
	return contenttype.NewAllowedContentTypeRepo(db, baseLog)
}
func NewContentTypeLinkRepo(db *gorm.DB, baseLog *logger.Logger) ContentTypeLinkRepo {
	return contenttype.NewContentTypeLinkRepo(db, baseLog)
}
func NewNodeDependentsRepo(db *gorm.DB, baseLog *logger.Logger) NodeDependentsRepo {
	return contenttype.NewNodeDependentsRepo(db, baseLog)
}
func NewProjectionRepo(db *gorm.DB, baseLog *logger.Logger) ProjectionRepo {
	return contenttype.NewProjectionRepo(db, baseLog)
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return template.NewTemplateRepo(db, baseLog)
}
