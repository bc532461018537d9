package handlers

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hargun03/accidents-analysis/models"
	"github.com/hargun03/accidents-analysis/services"

	"github.com/gin-gonic/gin"
)

// TableLoader returns the collisions table for a row limit.
type TableLoader interface {
	Load(rowLimit int) (*services.Table, error)
}

type DashboardHandler struct {
	loader TableLoader
	cache  *services.CacheService
	rows   RowLimits
}

func NewDashboardHandler(loader TableLoader, cache *services.CacheService, rows RowLimits) *DashboardHandler {
	return &DashboardHandler{loader: loader, cache: cache, rows: rows}
}

// table loads the table for the request's row limit, writing the error
// response itself when it cannot.
func (h *DashboardHandler) table(c *gin.Context) (*services.Table, bool) {
	rowLimit, err := h.rows.Parse(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	table, err := h.loader.Load(rowLimit)
	if err != nil {
		log.Printf("dataset load failed for rows=%d: %v", rowLimit, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collision dataset unavailable"})
		return nil, false
	}
	return table, true
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctrl, err := ParseControls(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("dashboard:%d:%d:%d:%s:%t",
		table.RowLimit, ctrl.MinInjured, ctrl.Hour, ctrl.Affected, ctrl.ShowRaw)

	var cached models.Dashboard
	if found, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && found {
		c.JSON(http.StatusOK, cached)
		return
	}

	start := time.Now()
	dashboard, err := services.BuildDashboard(table, ctrl)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recomputeDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())

	go h.cache.Set(context.Background(), cacheKey, dashboard)

	c.JSON(http.StatusOK, dashboard)
}

func (h *DashboardHandler) GetInjured(c *gin.Context) {
	minInjured := 0
	if v := c.Query("min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > services.MaxInjuredThreshold {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid min parameter, must be an integer between 0 and %d", services.MaxInjuredThreshold)})
			return
		}
		minInjured = n
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	points := services.FilterByInjuries(table.Records, minInjured)
	c.JSON(http.StatusOK, gin.H{"min_injured": minInjured, "count": len(points), "data": points})
}

func (h *DashboardHandler) GetHour(c *gin.Context) {
	hour, err := parseHour(c.Param("hour"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	view, err := services.HourView(table, hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) GetMinutes(c *gin.Context) {
	hour, err := parseHour(c.Param("hour"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, services.MinuteBreakdown(services.FilterByHour(table.Records, hour), hour))
}

func (h *DashboardHandler) GetMinuteChart(c *gin.Context) {
	hour, err := parseHour(c.DefaultQuery("hour", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	breakdown := services.MinuteBreakdown(services.FilterByHour(table.Records, hour), hour)

	var buf bytes.Buffer
	if err := services.RenderMinuteChart(&buf, breakdown); err != nil {
		log.Printf("minute chart render failed for hour=%d: %v", hour, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart rendering failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *DashboardHandler) GetTopStreets(c *gin.Context) {
	affected, err := services.ParseCategory(c.DefaultQuery("affected", string(services.Pedestrians)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, ok := h.table(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("streets:%d:%s", table.RowLimit, affected)

	var cached models.StreetRanking
	if found, err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && found {
		c.JSON(http.StatusOK, cached)
		return
	}

	ranking := models.StreetRanking{
		Affected: string(affected),
		Streets:  services.TopStreets(table.Records, affected),
	}
	go h.cache.Set(context.Background(), cacheKey, ranking)

	c.JSON(http.StatusOK, ranking)
}
