package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"financehub/portal/internal/models"
	"financehub/portal/internal/notify"
)

func (h HandlerSet) ListarMensagens(c *gin.Context) {
	mensagens, erro := h.suporte.Mensagens()
	c.JSON(http.StatusOK, gin.H{"mensagens": mensagens, "erro": erro})
}

type mensagemRequest struct {
	SolicitacaoID string `json:"solicitacaoId"`
	Assunto       string `json:"assunto" binding:"required"`
	Conteudo      string `json:"conteudo" binding:"required"`
	Remetente     string `json:"remetente"`
}

// EnviarMensagem creates an outgoing support message. A backend failure
// still answers 202 with the local pending record: the message is queued,
// not lost, and the reconciler will deliver it.
func (h HandlerSet) EnviarMensagem(c *gin.Context) {
	var req mensagemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	remetente := req.Remetente
	if remetente == "" {
		remetente = "Você"
	}

	mensagem, err := h.suporte.AdicionarMensagem(c.Request.Context(), models.Mensagem{
		SolicitacaoID: req.SolicitacaoID,
		Direcao:       models.DirecaoEnviada,
		Assunto:       req.Assunto,
		Conteudo:      req.Conteudo,
		Remetente:     remetente,
	})
	if err != nil {
		if mensagem.ID != "" {
			h.notificacoes.Push(notify.TipoAviso, "Suporte", "Mensagem enfileirada, será reenviada")
			c.JSON(http.StatusAccepted, gin.H{"mensagem": mensagem, "erro": err.Error()})
			return
		}
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}

	h.notificacoes.Push(notify.TipoSucesso, "Suporte", "Mensagem enviada")
	c.JSON(http.StatusCreated, gin.H{"mensagem": mensagem})
}

func (h HandlerSet) MarcarLida(c *gin.Context) {
	h.suporte.MarcarLida(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) MarcarTodasLidas(c *gin.Context) {
	h.suporte.MarcarTodasLidas(c.Request.Context())
	c.Status(http.StatusNoContent)
}
