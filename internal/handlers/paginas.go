package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The portal UI is served elsewhere; these endpoints exist so the route
// guards have real targets and an unauthenticated probe gets a coherent
// answer.

func (h HandlerSet) PaginaEntrada(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"portal": "FinanceHub",
		"login":  "/api/v1/auth/login",
	})
}

func (h HandlerSet) PaginaDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Resumo())
}
