package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"financehub/portal/internal/models"
	"financehub/portal/internal/permissions"
)

func (h HandlerSet) roleAtual() models.Role {
	snap := h.sessao.Snapshot()
	if snap.User == nil {
		return ""
	}
	return snap.User.Role
}

func (h HandlerSet) ListarUsuarios(c *gin.Context) {
	if !permissions.CanViewUsers(h.roleAtual()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "sem permissão"})
		return
	}
	usuarios, erro := h.configuracoes.Usuarios()
	c.JSON(http.StatusOK, gin.H{"usuarios": usuarios, "erro": erro})
}

type usuarioRequest struct {
	Nome      string `json:"nome" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Role      string `json:"role" binding:"required"`
	GerenteID string `json:"gerenteId"`
}

func (h HandlerSet) CriarUsuario(c *gin.Context) {
	if !permissions.CanCreateEditDeleteUsers(h.roleAtual()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "sem permissão"})
		return
	}
	var req usuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role inválida: " + req.Role})
		return
	}

	criado, err := h.configuracoes.CriarUsuario(c.Request.Context(), models.User{
		Nome:      req.Nome,
		Email:     req.Email,
		Role:      role,
		GerenteID: req.GerenteID,
	})
	if err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, criado)
}

func (h HandlerSet) AtualizarUsuario(c *gin.Context) {
	if !permissions.CanCreateEditDeleteUsers(h.roleAtual()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "sem permissão"})
		return
	}
	var req usuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role inválida: " + req.Role})
		return
	}

	atualizado, err := h.configuracoes.AtualizarUsuario(c.Request.Context(), models.User{
		ID:        c.Param("id"),
		Nome:      req.Nome,
		Email:     req.Email,
		Role:      role,
		GerenteID: req.GerenteID,
	})
	if err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, atualizado)
}

func (h HandlerSet) RemoverUsuario(c *gin.Context) {
	if !permissions.CanCreateEditDeleteUsers(h.roleAtual()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "sem permissão"})
		return
	}
	if err := h.configuracoes.RemoverUsuario(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(h.statusDeErro(c, err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Preferencias(c *gin.Context) {
	c.JSON(http.StatusOK, h.configuracoes.Preferencias())
}

func (h HandlerSet) SalvarPreferencias(c *gin.Context) {
	var p models.Preferencia
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.configuracoes.SalvarPreferencias(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h HandlerSet) Permissoes(c *gin.Context) {
	c.JSON(http.StatusOK, h.configuracoes.Permissoes(h.roleAtual()))
}
