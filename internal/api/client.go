// Package api is the HTTP client for the FinanceHub backend, the
// authoritative source for application identity and every domain collection.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"financehub/portal/internal/config"
	"financehub/portal/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.BackendConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// do runs one request. token may be empty for public endpoints. out, when
// non-nil, receives the decoded JSON body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar requisição: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("montar requisição: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		_ = json.Unmarshal(data, &er)
		msg := er.Error
		if msg == "" {
			msg = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &Error{Kind: KindInvalidSession, Mensagem: msg}
		}
		return remoteError(msg)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return networkError(fmt.Errorf("resposta malformada: %w", err))
		}
	}
	return nil
}

type validarSessaoResponse struct {
	Valid   bool   `json:"valid"`
	Session *struct {
		User models.User `json:"user"`
	} `json:"session"`
	Error string `json:"error"`
}

// ValidarSessao checks a bearer token against the backend. A definitive
// rejection comes back as KindInvalidSession; everything else that is not a
// clean acceptance is KindNetwork or KindRemote and must not destroy a
// cached session.
func (c *Client) ValidarSessao(ctx context.Context, token string) (models.User, error) {
	var resp validarSessaoResponse
	if err := c.do(ctx, http.MethodPost, "/auth/validar", token, nil, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.Valid || resp.Session == nil {
		return models.User{}, remoteError(resp.Error)
	}
	return resp.Session.User, nil
}

// EncerrarSessao tells the backend to drop the session. Best-effort only;
// callers log and move on.
func (c *Client) EncerrarSessao(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

type listaEmpresasResponse struct {
	Empresas []models.Empresa `json:"empresas"`
}

func (c *Client) ListarEmpresas(ctx context.Context, token string) ([]models.Empresa, error) {
	var resp listaEmpresasResponse
	if err := c.do(ctx, http.MethodGet, "/empresas", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Empresas, nil
}

func (c *Client) CriarEmpresa(ctx context.Context, token string, empresa models.Empresa) (models.Empresa, error) {
	var criada models.Empresa
	if err := c.do(ctx, http.MethodPost, "/empresas", token, empresa, &criada); err != nil {
		return models.Empresa{}, err
	}
	return criada, nil
}

func (c *Client) AtualizarEmpresa(ctx context.Context, token string, empresa models.Empresa) (models.Empresa, error) {
	var atualizada models.Empresa
	if err := c.do(ctx, http.MethodPut, "/empresas/"+empresa.ID, token, empresa, &atualizada); err != nil {
		return models.Empresa{}, err
	}
	return atualizada, nil
}

func (c *Client) RemoverEmpresa(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/empresas/"+id, token, nil, nil)
}

type listaSolicitacoesResponse struct {
	Solicitacoes []models.Solicitacao `json:"solicitacoes"`
}

func (c *Client) ListarSolicitacoes(ctx context.Context, token string) ([]models.Solicitacao, error) {
	var resp listaSolicitacoesResponse
	if err := c.do(ctx, http.MethodGet, "/solicitacoes", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Solicitacoes, nil
}

func (c *Client) CriarSolicitacao(ctx context.Context, token string, s models.Solicitacao) (models.Solicitacao, error) {
	var criada models.Solicitacao
	if err := c.do(ctx, http.MethodPost, "/solicitacoes", token, s, &criada); err != nil {
		return models.Solicitacao{}, err
	}
	return criada, nil
}

func (c *Client) AtualizarSolicitacao(ctx context.Context, token string, s models.Solicitacao) (models.Solicitacao, error) {
	var atualizada models.Solicitacao
	if err := c.do(ctx, http.MethodPut, "/solicitacoes/"+s.ID, token, s, &atualizada); err != nil {
		return models.Solicitacao{}, err
	}
	return atualizada, nil
}

type listaUsuariosResponse struct {
	Usuarios []models.User `json:"usuarios"`
}

func (c *Client) ListarUsuarios(ctx context.Context, token string) ([]models.User, error) {
	var resp listaUsuariosResponse
	if err := c.do(ctx, http.MethodGet, "/usuarios", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Usuarios, nil
}

func (c *Client) CriarUsuario(ctx context.Context, token string, u models.User) (models.User, error) {
	var criado models.User
	if err := c.do(ctx, http.MethodPost, "/usuarios", token, u, &criado); err != nil {
		return models.User{}, err
	}
	return criado, nil
}

func (c *Client) AtualizarUsuario(ctx context.Context, token string, u models.User) (models.User, error) {
	var atualizado models.User
	if err := c.do(ctx, http.MethodPut, "/usuarios/"+u.ID, token, u, &atualizado); err != nil {
		return models.User{}, err
	}
	return atualizado, nil
}

func (c *Client) RemoverUsuario(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodDelete, "/usuarios/"+id, token, nil, nil)
}

type listaMensagensResponse struct {
	Mensagens []models.Mensagem `json:"mensagens"`
}

// ListarMensagens is the one list endpoint that works without a token; the
// backend scopes it by origin.
func (c *Client) ListarMensagens(ctx context.Context, token string) ([]models.Mensagem, error) {
	var resp listaMensagensResponse
	if err := c.do(ctx, http.MethodGet, "/mensagens", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Mensagens, nil
}

func (c *Client) EnviarMensagem(ctx context.Context, token string, m models.Mensagem) (models.Mensagem, error) {
	var enviada models.Mensagem
	if err := c.do(ctx, http.MethodPost, "/mensagens", token, m, &enviada); err != nil {
		return models.Mensagem{}, err
	}
	return enviada, nil
}

func (c *Client) MarcarLida(ctx context.Context, token string, id string) error {
	return c.do(ctx, http.MethodPost, "/mensagens/"+id+"/lida", token, nil, nil)
}

type listaLancamentosResponse struct {
	Lancamentos []models.Lancamento `json:"lancamentos"`
}

func (c *Client) ListarLancamentos(ctx context.Context, token string) ([]models.Lancamento, error) {
	var resp listaLancamentosResponse
	if err := c.do(ctx, http.MethodGet, "/lancamentos", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lancamentos, nil
}
