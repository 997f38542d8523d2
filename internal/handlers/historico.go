package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) ListarHistorico(c *gin.Context) {
	registros, erro := h.historico.Registros()
	c.JSON(http.StatusOK, gin.H{"historico": registros, "erro": erro})
}

func (h HandlerSet) ListarLancamentos(c *gin.Context) {
	lancamentos, erro := h.historico.Lancamentos()
	c.JSON(http.StatusOK, gin.H{"lancamentos": lancamentos, "erro": erro})
}

func (h HandlerSet) DashboardResumo(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Resumo())
}

func (h HandlerSet) ListarNotificacoes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notificacoes": h.notificacoes.Listar()})
}

func (h HandlerSet) RemoverNotificacao(c *gin.Context) {
	h.notificacoes.Remover(c.Param("id"))
	c.Status(http.StatusNoContent)
}
