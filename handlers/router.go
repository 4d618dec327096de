package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Route struct {
	Method      string
	Path        string
	Description string
}

var Routes = []Route{
	{Method: "GET", Path: "/", Description: "page with a server-picked cat"},
	{Method: "POST", Path: "/", Description: "next cat without JavaScript"},
	{Method: "GET", Path: "/api/cat-image", Description: "next cat for the page script"},
	{Method: "GET", Path: "/api/health", Description: "health check"},
	{Method: "GET", Path: "/metrics", Description: "prometheus metrics"},
}

func NewRouter(catHandler *CatHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(logger, "/metrics"), Recovery(logger))

	router.GET("/", catHandler.Index)
	router.POST("/", catHandler.NextImage)

	api := router.Group("/api")
	api.Use(corsMiddleware())
	{
		api.GET("/cat-image", catHandler.GetCatImage)
		api.GET("/health", catHandler.Health)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
