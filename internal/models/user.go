package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleGerente Role = "gerente"
	RoleUsuario Role = "usuario"
	RoleCliente Role = "cliente"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGerente, RoleUsuario, RoleCliente:
		return true
	}
	return false
}

// User is the application-level identity returned by the backend session
// validation. Role and profile fields are server-authoritative; the client
// never mutates them locally.
type User struct {
	ID               string     `json:"id"`
	Nome             string     `json:"nome"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	GerenteID        string     `json:"gerenteId,omitempty"`
	EffectiveOwnerID string     `json:"effectiveOwnerId,omitempty"`
	CriadoEm         *time.Time `json:"criadoEm,omitempty"`
}

// OwnerID resolves which owner's empresas and solicitações are visible.
// An employee working under a gerente sees the gerente's records.
func (u User) OwnerID() string {
	if u.EffectiveOwnerID != "" {
		return u.EffectiveOwnerID
	}
	if u.Role == RoleUsuario && u.GerenteID != "" {
		return u.GerenteID
	}
	return u.ID
}

// Preferencia holds per-user portal preferences, mirrored locally.
type Preferencia struct {
	NotificarPorEmail bool   `json:"notificarPorEmail"`
	ResumoSemanal     bool   `json:"resumoSemanal"`
	Idioma            string `json:"idioma"`
	Tema              string `json:"tema"`
}
