package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"financehub/portal/internal/anexos"
	"financehub/portal/internal/config"
	"financehub/portal/internal/middleware"
	"financehub/portal/internal/notify"
	"financehub/portal/internal/session"
	"financehub/portal/internal/store"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	sessao        *session.Store
	dashboard     *store.Dashboard
	configuracoes *store.Configuracoes
	historico     *store.Historico
	suporte       *store.Suporte
	notificacoes  *notify.Store
	anexos        *anexos.Service
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	sessao *session.Store,
	dashboard *store.Dashboard,
	configuracoes *store.Configuracoes,
	historico *store.Historico,
	suporte *store.Suporte,
	notificacoes *notify.Store,
	anexosSvc *anexos.Service,
) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		sessao:        sessao,
		dashboard:     dashboard,
		configuracoes: configuracoes,
		historico:     historico,
		suporte:       suporte,
		notificacoes:  notificacoes,
		anexos:        anexosSvc,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/sessao", h.Sessao)

		protected := v1.Group("")
		protected.Use(middleware.RequireSession(h.sessao, h.cfg.Session.CookieName))

		protected.GET("/dashboard/resumo", h.DashboardResumo)

		protected.GET("/empresas", h.ListarEmpresas)
		protected.POST("/empresas", h.CriarEmpresa)
		protected.PUT("/empresas/:id", h.AtualizarEmpresa)
		protected.DELETE("/empresas/:id", h.RemoverEmpresa)

		protected.GET("/solicitacoes", h.ListarSolicitacoes)
		protected.POST("/solicitacoes", h.CriarSolicitacao)
		protected.PUT("/solicitacoes/:id", h.AtualizarSolicitacao)
		protected.POST("/solicitacoes/:id/anexos", h.EnviarAnexo)
		protected.GET("/solicitacoes/:id/anexos/link", h.LinkAnexo)

		protected.GET("/usuarios", h.ListarUsuarios)
		protected.POST("/usuarios", h.CriarUsuario)
		protected.PUT("/usuarios/:id", h.AtualizarUsuario)
		protected.DELETE("/usuarios/:id", h.RemoverUsuario)

		protected.GET("/preferencias", h.Preferencias)
		protected.PUT("/preferencias", h.SalvarPreferencias)
		protected.GET("/permissoes", h.Permissoes)

		protected.GET("/mensagens", h.ListarMensagens)
		protected.POST("/mensagens", h.EnviarMensagem)
		protected.POST("/mensagens/:id/lida", h.MarcarLida)
		protected.POST("/mensagens/todas-lidas", h.MarcarTodasLidas)

		protected.GET("/historico", h.ListarHistorico)
		protected.GET("/lancamentos", h.ListarLancamentos)

		protected.GET("/notificacoes", h.ListarNotificacoes)
		protected.DELETE("/notificacoes/:id", h.RemoverNotificacao)
	}
}

// RegisterPaginas wires the page-level route guards: the portal prefix
// requires a token, the entry pages bounce authenticated visitors to the
// dashboard.
func (h HandlerSet) RegisterPaginas(engine *gin.Engine) {
	cookie := h.cfg.Session.CookieName

	entrada := engine.Group("")
	entrada.Use(middleware.GuardaEntrada(cookie))
	entrada.GET("/", h.PaginaEntrada)
	entrada.GET("/login", h.PaginaEntrada)

	portal := engine.Group("/portal")
	portal.Use(middleware.GuardaPortal(cookie))
	portal.GET("/dashboard", h.PaginaDashboard)
}
