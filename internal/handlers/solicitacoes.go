package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"financehub/portal/internal/models"
	"financehub/portal/internal/notify"
)

type solicitacaoRequest struct {
	Numero     string `json:"numero"`
	Titulo     string `json:"titulo" binding:"required"`
	Origem     string `json:"origem"`
	Prioridade string `json:"prioridade" binding:"required"`
	Status     string `json:"status"`
	Estagio    string `json:"estagio"`
	Mes        int    `json:"mes"`
	Boleto     string `json:"boleto"`
	NotaFiscal string `json:"notaFiscal"`
}

func (r solicitacaoRequest) modelo(id string) (models.Solicitacao, string) {
	s := models.Solicitacao{
		ID:         id,
		Numero:     r.Numero,
		Titulo:     r.Titulo,
		Origem:     r.Origem,
		Prioridade: models.Prioridade(r.Prioridade),
		Status:     models.StatusSolicitacao(r.Status),
		Estagio:    models.Estagio(r.Estagio),
		Mes:        r.Mes,
		Boleto:     r.Boleto,
		NotaFiscal: r.NotaFiscal,
	}
	if s.Status == "" {
		s.Status = models.StatusPendente
	}
	if s.Estagio == "" {
		s.Estagio = models.EstagioNovo
	}

	if !s.Prioridade.Valid() {
		return s, "prioridade inválida: " + r.Prioridade
	}
	if !s.Status.Valid() {
		return s, "status inválido: " + r.Status
	}
	if !s.Estagio.Valid() {
		return s, "estágio inválido: " + r.Estagio
	}
	if s.Mes != 0 && (s.Mes < 1 || s.Mes > 12) {
		return s, "mês fora do intervalo 1..12"
	}
	return s, ""
}

func (h HandlerSet) ListarSolicitacoes(c *gin.Context) {
	solicitacoes, erro := h.dashboard.Solicitacoes()
	c.JSON(http.StatusOK, gin.H{"solicitacoes": solicitacoes, "erro": erro})
}

func (h HandlerSet) CriarSolicitacao(c *gin.Context) {
	var req solicitacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, problema := req.modelo("")
	if problema != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problema})
		return
	}

	criada, err := h.dashboard.CriarSolicitacao(c.Request.Context(), s)
	if err != nil {
		h.notificacoes.Push(notify.TipoErro, "Solicitação", "Não foi possível criar a solicitação")
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	h.notificacoes.Push(notify.TipoSucesso, "Solicitação", "Solicitação criada")
	c.JSON(http.StatusCreated, criada)
}

func (h HandlerSet) AtualizarSolicitacao(c *gin.Context) {
	var req solicitacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, problema := req.modelo(c.Param("id"))
	if problema != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problema})
		return
	}

	atualizada, err := h.dashboard.AtualizarSolicitacao(c.Request.Context(), s)
	if err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, atualizada)
}

// EnviarAnexo stores a boleto or nota fiscal file and records its key on the
// solicitação.
func (h HandlerSet) EnviarAnexo(c *gin.Context) {
	if h.anexos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "armazenamento de anexos indisponível"})
		return
	}

	tipo := c.Query("tipo")
	file, err := c.FormFile("arquivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arquivo ausente"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	key, err := h.anexos.Upload(c.Request.Context(), c.Param("id"), tipo, src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"anexo": key})
}

func (h HandlerSet) LinkAnexo(c *gin.Context) {
	if h.anexos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "armazenamento de anexos indisponível"})
		return
	}
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key obrigatória"})
		return
	}
	link, err := h.anexos.LinkTemporario(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
