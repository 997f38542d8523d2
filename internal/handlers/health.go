package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	Sessao      string `json:"sessao"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	sessao := "unauthenticated"
	snap := h.sessao.Snapshot()
	switch {
	case snap.Loading:
		sessao = "loading"
	case snap.Authenticated:
		sessao = "authenticated"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Sessao:      sessao,
		Environment: h.cfg.Environment,
	})
}
