// Package identity talks to the external identity provider, which owns
// credential verification. The backend remains authoritative for
// application-level identity; a provider acceptance alone never creates a
// session.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"financehub/portal/internal/config"
)

var ErrCredenciaisInvalidas = errors.New("Email ou senha incorretos")
var ErrEmailNaoConfirmado = errors.New("Confirme seu email antes de fazer login")

type ProviderSession struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.IdentityConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (p providerError) mensagem() string {
	if p.ErrorDescription != "" {
		return p.ErrorDescription
	}
	if p.Msg != "" {
		return p.Msg
	}
	return p.Error
}

// SignInWithPassword exchanges credentials for a provider session. The two
// provider messages users actually hit are translated; anything else passes
// through verbatim.
func (c *Client) SignInWithPassword(ctx context.Context, email, senha string) (ProviderSession, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": senha})
	if err != nil {
		return ProviderSession{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return ProviderSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return ProviderSession{}, fmt.Errorf("falha de comunicação com o provedor de identidade: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ProviderSession{}, fmt.Errorf("falha de comunicação com o provedor de identidade: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		_ = json.Unmarshal(data, &pe)
		return ProviderSession{}, traduzirErro(pe.mensagem())
	}

	var session ProviderSession
	if err := json.Unmarshal(data, &session); err != nil {
		return ProviderSession{}, fmt.Errorf("resposta malformada do provedor de identidade: %w", err)
	}
	if session.AccessToken == "" {
		return ProviderSession{}, errors.New("provedor de identidade não retornou token")
	}
	return session, nil
}

// SignOut invalidates the provider session. Best-effort; callers log the
// error and continue the local logout.
func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("provider signout: %d", resp.StatusCode)
	}
	return nil
}

func traduzirErro(msg string) error {
	switch {
	case strings.Contains(msg, "Invalid login credentials"):
		return ErrCredenciaisInvalidas
	case strings.Contains(msg, "Email not confirmed"):
		return ErrEmailNaoConfirmado
	case msg == "":
		return errors.New("erro desconhecido do provedor de identidade")
	}
	return errors.New(msg)
}
