package api

import (
	"errors"
	"strings"
)

// Kind is the closed set of failure classes a backend call can produce.
type Kind int

const (
	// KindRemote: the backend answered and rejected the operation for a
	// reason other than session validity.
	KindRemote Kind = iota
	// KindInvalidSession: the backend definitively rejected the token. Fatal
	// to the session.
	KindInvalidSession
	// KindNetwork: the backend could not be reached or answered garbage.
	// Never fatal to the session.
	KindNetwork
)

type Error struct {
	Kind     Kind
	Mensagem string
	Causa    error
}

func (e *Error) Error() string {
	if e.Mensagem != "" {
		return e.Mensagem
	}
	if e.Causa != nil {
		return e.Causa.Error()
	}
	return "erro desconhecido"
}

func (e *Error) Unwrap() error { return e.Causa }

func remoteError(msg string) *Error {
	if SessaoInvalida(msg) {
		return &Error{Kind: KindInvalidSession, Mensagem: msg}
	}
	return &Error{Kind: KindRemote, Mensagem: msg}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Mensagem: "falha de comunicação com o servidor", Causa: err}
}

// IsInvalidSession reports whether err definitively invalidates the session.
func IsInvalidSession(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidSession
}

// IsNetwork reports whether err is transient: the session and any cached
// state must survive it.
func IsNetwork(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNetwork
}

// Substrings that mark a backend error as a definitive token rejection.
// Anything else, including an empty message, is treated as transient so a
// flaky network never forces a logout.
var marcadoresSessaoInvalida = []string{
	"unauthorized",
	"expired token",
	"invalid token",
	"token not provided",
	"invalid session",
	"expired session",
	"401",
}

// SessaoInvalida classifies a backend error message, case-insensitively.
func SessaoInvalida(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, marcador := range marcadoresSessaoInvalida {
		if strings.Contains(lower, marcador) {
			return true
		}
	}
	return false
}
