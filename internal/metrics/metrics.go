// Package metrics 注册 Prometheus 指标，并提供 gin 中间件采集 HTTP 请求数据。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunflowers_http_requests_total",
			Help: "HTTP 请求总数",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sunflowers_http_request_duration_seconds",
			Help:    "HTTP 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// FileOperationsTotal 统计图库文件的保存与清理结果。
	FileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunflowers_gallery_file_operations_total",
			Help: "图库文件操作次数",
		},
		[]string{"operation", "result"},
	)
)

// RecordFileOperation 记录一次文件操作。
func RecordFileOperation(operation, result string) {
	FileOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Middleware 使用路由模板作为标签，避免 ID 带来的高基数。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
