package gin

import (
	"strconv"
	"time"

	"resourcehub/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware 为 Gin 添加 Prometheus 指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method + " " + c.FullPath()

		metrics.RecordRequest(method, statusCode, time.Since(start))
	}
}
