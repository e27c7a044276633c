package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/config"
	"github.com/sunflowerskg/internal/handler"
	"github.com/sunflowerskg/internal/metrics"
)

// Options 是路由层需要的配置子集。
type Options struct {
	UploadDir     string
	UploadURLPath string
	CORSOrigins   []string
	Logger        logrus.FieldLogger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = config.DefaultCORSOrigins
	}

	r := gin.New()
	r.Use(handler.RequestLogger(log), gin.Recovery(), metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 上传的图库文件按 imageUrl 原样对外提供
	if opts.UploadDir != "" && opts.UploadURLPath != "" {
		r.Static(opts.UploadURLPath, opts.UploadDir)
	}

	r.GET("/health", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	admin := api.AdminOnly()

	auth := v1.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.GET("/me", admin, api.Me)
	}

	inquiries := v1.Group("/inquiries")
	{
		inquiries.POST("", api.CreateInquiry)
		inquiries.GET("", admin, api.ListInquiries)
		inquiries.GET("/all", admin, api.ListAllInquiries)
		inquiries.GET("/:id", admin, api.GetInquiry)
		inquiries.PUT("/:id", admin, api.UpdateInquiry)
		inquiries.DELETE("/:id", admin, api.DeleteInquiry)
	}

	news := v1.Group("/news")
	{
		news.GET("", api.ListNews)
		news.GET("/all", admin, api.ListAllNews)
		news.POST("", admin, api.CreateNews)
		news.PUT("/:id", admin, api.UpdateNews)
		news.DELETE("/:id", admin, api.DeleteNews)
	}

	gallery := v1.Group("/gallery")
	{
		gallery.GET("", api.ListGalleryImages)
		gallery.GET("/all", admin, api.ListAllGalleryImages)
		gallery.POST("", admin, api.CreateGalleryImage)
		gallery.PUT("/:id", admin, api.UpdateGalleryImage)
		gallery.DELETE("/:id", admin, api.DeleteGalleryImage)
	}

	return r
}
