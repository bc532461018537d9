package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(router *gin.Engine, h *DashboardHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"message": "Collisions dashboard API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", h.Live)

	api := router.Group("/api/v1")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/collisions/injured", h.GetInjured)
	api.GET("/hours/:hour", h.GetHour)
	api.GET("/hours/:hour/minutes", h.GetMinutes)
	api.GET("/charts/minutes.png", h.GetMinuteChart)
	api.GET("/streets/top", h.GetTopStreets)
}
