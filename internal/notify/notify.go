// Package notify keeps the in-memory queue of transient user-facing
// notices. Nothing here persists; a restart empties the queue.
package notify

import (
	"sync"
	"time"

	"financehub/portal/internal/ids"
)

type Tipo string

const (
	TipoSucesso Tipo = "success"
	TipoErro    Tipo = "error"
	TipoAviso   Tipo = "warning"
	TipoInfo    Tipo = "info"
)

const (
	// DuracaoPadrao is how long a notice stays before its exit transition.
	DuracaoPadrao = 5 * time.Second
	// graceSaida lets the UI animate the notice out before removal.
	graceSaida = 300 * time.Millisecond
)

type Notificacao struct {
	ID       string        `json:"id"`
	Tipo     Tipo          `json:"tipo"`
	Titulo   string        `json:"titulo"`
	Mensagem string        `json:"mensagem"`
	Duracao  time.Duration `json:"duracao"`
	Saindo   bool          `json:"saindo"`
}

// Store schedules each notice's expiry independently with its own timer;
// there is no shared ticker.
type Store struct {
	mu     sync.Mutex
	itens  []Notificacao
	timers map[string]*time.Timer
	closed bool
}

func NewStore() *Store {
	return &Store{timers: make(map[string]*time.Timer)}
}

// Push enqueues a notice with the default duration and returns its id.
func (s *Store) Push(tipo Tipo, titulo, mensagem string) string {
	return s.PushComDuracao(tipo, titulo, mensagem, DuracaoPadrao)
}

func (s *Store) PushComDuracao(tipo Tipo, titulo, mensagem string, duracao time.Duration) string {
	if duracao <= 0 {
		duracao = DuracaoPadrao
	}
	n := Notificacao{
		ID:       ids.New(),
		Tipo:     tipo,
		Titulo:   titulo,
		Mensagem: mensagem,
		Duracao:  duracao,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return n.ID
	}
	s.itens = append(s.itens, n)
	s.timers[n.ID] = time.AfterFunc(duracao, func() { s.expirar(n.ID) })
	s.mu.Unlock()

	return n.ID
}

// expirar marks the notice as leaving, then removes it after the grace
// period.
func (s *Store) expirar(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for i := range s.itens {
		if s.itens[i].ID == id {
			s.itens[i].Saindo = true
		}
	}
	s.timers[id] = time.AfterFunc(graceSaida, func() { s.Remover(id) })
	s.mu.Unlock()
}

// Remover drops a notice immediately, cancelling any pending timer. Removing
// an unknown id is a no-op.
func (s *Store) Remover(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	out := s.itens[:0]
	for _, n := range s.itens {
		if n.ID != id {
			out = append(out, n)
		}
	}
	s.itens = out
}

// Listar returns the notices in insertion order.
func (s *Store) Listar() []Notificacao {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notificacao, len(s.itens))
	copy(out, s.itens)
	return out
}

// Fechar stops every pending timer. Used on shutdown.
func (s *Store) Fechar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.itens = nil
}
