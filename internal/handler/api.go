package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/service"
	"github.com/sunflowerskg/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	inquiries      *service.InquiryService
	news           *service.NewsService
	gallery        *service.GalleryService
	auth           *service.AuthService
	log            logrus.FieldLogger
	maxUploadBytes int64
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, files *storage.FileStore, auth *service.AuthService, log logrus.FieldLogger) *API {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		db:             gdb,
		inquiries:      service.NewInquiryService(gdb),
		news:           service.NewNewsService(gdb),
		gallery:        service.NewGalleryService(gdb, files, log),
		auth:           auth,
		log:            log,
		maxUploadBytes: files.MaxBytes(),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// AdminOnly 返回挂在需要管理员身份的路由上的守卫。
func (a *API) AdminOnly() gin.HandlerFunc {
	return RequireAdmin(a.auth)
}
