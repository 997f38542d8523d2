package notify

import (
	"testing"
	"time"
)

func TestPushAndListOrder(t *testing.T) {
	s := NewStore()
	defer s.Fechar()

	a := s.Push(TipoSucesso, "ok", "primeira")
	b := s.Push(TipoErro, "falha", "segunda")

	itens := s.Listar()
	if len(itens) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(itens))
	}
	if itens[0].ID != a || itens[1].ID != b {
		t.Error("insertion order not preserved")
	}
	if itens[0].Duracao != DuracaoPadrao {
		t.Errorf("expected default duration, got %v", itens[0].Duracao)
	}
}

func TestNoticeExpiresAfterDuration(t *testing.T) {
	s := NewStore()
	defer s.Fechar()

	s.PushComDuracao(TipoInfo, "t", "m", 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Listar()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("notice never expired")
}

func TestExitTransitionBeforeRemoval(t *testing.T) {
	s := NewStore()
	defer s.Fechar()

	s.PushComDuracao(TipoAviso, "t", "m", 30*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	sawSaindo := false
	for time.Now().Before(deadline) {
		itens := s.Listar()
		if len(itens) == 0 {
			if !sawSaindo {
				t.Fatal("notice removed without exit transition")
			}
			return
		}
		if itens[0].Saindo {
			sawSaindo = true
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("notice never removed")
}

func TestRemoverUnknownIDIsNoop(t *testing.T) {
	s := NewStore()
	defer s.Fechar()

	s.Push(TipoInfo, "t", "m")
	s.Remover("nao-existe")
	if len(s.Listar()) != 1 {
		t.Error("known notice should survive removal of unknown id")
	}
}

func TestRemoverCancelsTimer(t *testing.T) {
	s := NewStore()
	defer s.Fechar()

	id := s.PushComDuracao(TipoInfo, "t", "m", 10*time.Millisecond)
	s.Remover(id)
	time.Sleep(50 * time.Millisecond)
	if len(s.Listar()) != 0 {
		t.Error("removed notice reappeared")
	}
}
