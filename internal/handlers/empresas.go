package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cnpj"
	"financehub/portal/internal/models"
	"financehub/portal/internal/notify"
	"financehub/portal/internal/store"
)

type empresaRequest struct {
	Nome  string   `json:"nome" binding:"required"`
	CNPJs []string `json:"cnpjs" binding:"required,min=1"`
	Ativo bool     `json:"ativo"`
}

// validarCNPJs normalizes every CNPJ in place, failing on the first invalid
// one. Form-level validation never reaches the stores.
func validarCNPJs(cnpjs []string) ([]string, error) {
	normalizados := make([]string, 0, len(cnpjs))
	for _, c := range cnpjs {
		if !cnpj.Valid(c) {
			return nil, errors.New("CNPJ inválido: " + c)
		}
		normalizados = append(normalizados, cnpj.Normalize(c))
	}
	return normalizados, nil
}

func (h HandlerSet) ListarEmpresas(c *gin.Context) {
	empresas, erro := h.dashboard.Empresas()
	c.JSON(http.StatusOK, gin.H{"empresas": empresas, "erro": erro})
}

func (h HandlerSet) CriarEmpresa(c *gin.Context) {
	var req empresaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cnpjs, err := validarCNPJs(req.CNPJs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	criada, err := h.dashboard.CriarEmpresa(c.Request.Context(), models.Empresa{
		Nome:  req.Nome,
		CNPJs: cnpjs,
		Ativo: req.Ativo,
	})
	if err != nil {
		h.notificacoes.Push(notify.TipoErro, "Empresa", "Não foi possível cadastrar a empresa")
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}

	h.notificacoes.Push(notify.TipoSucesso, "Empresa", "Empresa cadastrada")
	c.JSON(http.StatusCreated, criada)
}

func (h HandlerSet) AtualizarEmpresa(c *gin.Context) {
	var req empresaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cnpjs, err := validarCNPJs(req.CNPJs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	atualizada, err := h.dashboard.AtualizarEmpresa(c.Request.Context(), models.Empresa{
		ID:    c.Param("id"),
		Nome:  req.Nome,
		CNPJs: cnpjs,
		Ativo: req.Ativo,
	})
	if err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, atualizada)
}

func (h HandlerSet) RemoverEmpresa(c *gin.Context) {
	if err := h.dashboard.RemoverEmpresa(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	h.notificacoes.Push(notify.TipoInfo, "Empresa", "Empresa removida")
	c.Status(http.StatusNoContent)
}

// statusDeErro maps store errors onto HTTP statuses. A definitive
// invalid-session rejection is fatal to the session: the re-check clears the
// local identity and every mirrored collection before the 401 goes out.
func (h HandlerSet) statusDeErro(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, store.ErrSessaoExpirada):
		return http.StatusUnauthorized
	case api.IsInvalidSession(err):
		h.sessao.Validate(c.Request.Context())
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}
