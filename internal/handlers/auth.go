package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"financehub/portal/internal/models"
	"financehub/portal/internal/notify"
)

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Senha string `json:"senha" binding:"required"`
}

type sessaoResponse struct {
	Autenticado bool         `json:"autenticado"`
	Carregando  bool         `json:"carregando"`
	Usuario     *models.User `json:"usuario,omitempty"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.sessao.Login(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		h.notificacoes.Push(notify.TipoErro, "Falha no login", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// The guard middleware reads this cookie before any portal code runs.
	c.SetCookie(
		h.cfg.Session.CookieName,
		h.sessao.Token(),
		int(h.cfg.Session.CookieTTL.Seconds()),
		"/", "",
		h.cfg.Environment == "production",
		true,
	)

	h.notificacoes.Push(notify.TipoSucesso, "Bem-vindo", "Login efetuado com sucesso")
	c.JSON(http.StatusOK, gin.H{
		"usuario":    user,
		"permissoes": h.configuracoes.Permissoes(user.Role),
	})
}

// Logout always succeeds locally, whatever the remote calls do.
func (h HandlerSet) Logout(c *gin.Context) {
	h.sessao.Logout(c.Request.Context())
	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Environment == "production", true)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Sessao(c *gin.Context) {
	snap := h.sessao.Snapshot()
	c.JSON(http.StatusOK, sessaoResponse{
		Autenticado: snap.Authenticated,
		Carregando:  snap.Loading,
		Usuario:     snap.User,
	})
}
