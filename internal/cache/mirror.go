package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mirror slot keys. Stores read and write disjoint keys by convention.
const (
	ChaveToken         = "financehub:sessao:token"
	ChaveProviderToken = "financehub:sessao:provider"
	ChaveUsuario       = "financehub:sessao:usuario"
	ChaveEmpresas      = "financehub:empresas"
	ChaveSolicitacoes  = "financehub:solicitacoes"
	ChaveUsuarios      = "financehub:usuarios"
	ChavePreferencias  = "financehub:preferencias"
	ChaveLancamentos   = "financehub:lancamentos"
	ChaveMensagens     = "financehub:mensagens"
)

// ChavesDominio lists every domain-collection slot, cleared wholesale when a
// session ends so no previous user's data survives.
var ChavesDominio = []string{
	ChaveEmpresas,
	ChaveSolicitacoes,
	ChaveUsuarios,
	ChavePreferencias,
	ChaveLancamentos,
	ChaveMensagens,
}

// Mirror reads and writes JSON-serialized snapshots over a Store.
type Mirror struct {
	kv Store
}

func NewMirror(kv Store) *Mirror {
	return &Mirror{kv: kv}
}

func (m *Mirror) SetString(ctx context.Context, chave, valor string) error {
	return m.kv.Set(ctx, chave, []byte(valor))
}

func (m *Mirror) GetString(ctx context.Context, chave string) (string, bool) {
	v, ok, err := m.kv.Get(ctx, chave)
	if err != nil || !ok {
		return "", false
	}
	return string(v), true
}

func (m *Mirror) Delete(ctx context.Context, chaves ...string) error {
	return m.kv.Delete(ctx, chaves...)
}

// Salvar writes a JSON snapshot into a mirror slot.
func Salvar[T any](ctx context.Context, m *Mirror, chave string, valor T) error {
	data, err := json.Marshal(valor)
	if err != nil {
		return fmt.Errorf("serializar espelho %s: %w", chave, err)
	}
	return m.kv.Set(ctx, chave, data)
}

// Carregar reads a snapshot back; ok is false when the slot is absent or
// unreadable. A corrupt slot is treated as absent, never as an error the
// caller must handle.
func Carregar[T any](ctx context.Context, m *Mirror, chave string) (T, bool) {
	var valor T
	data, ok, err := m.kv.Get(ctx, chave)
	if err != nil || !ok {
		return valor, false
	}
	if err := json.Unmarshal(data, &valor); err != nil {
		return valor, false
	}
	return valor, true
}
