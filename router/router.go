package router

import (
	"resourcehub/config"
	"resourcehub/handler"
	"resourcehub/middleware"
	metricsgin "resourcehub/pkg/metrics/gin"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	resourceHandler *handler.ResourceHandler,
	ratingHandler *handler.RatingHandler,
	dashboardHandler *handler.DashboardHandler,
) *gin.Engine {
	r := gin.Default()
	r.Use(metricsgin.PrometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/resources", resourceHandler.List)
		api.GET("/resources/:id/download", resourceHandler.Download)
		api.GET("/dashboard", dashboardHandler.Dashboard)

		authed := api.Group("")
		authed.Use(middleware.JWTAuth(cfg.JWT))
		{
			authed.POST("/resources", resourceHandler.Upload)
			authed.POST("/resources/:id/rate", ratingHandler.Rate)
		}
	}
	return r
}
