package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ServiceStatus answers the legacy /ping/service probe with a bare 200.
func (h *HealthHandler) ServiceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, http.StatusOK)
}
