package models

import "time"

type Direcao string

const (
	DirecaoEnviada  Direcao = "enviada"
	DirecaoRecebida Direcao = "recebida"
)

func (d Direcao) Valid() bool {
	return d == DirecaoEnviada || d == DirecaoRecebida
}

// Mensagem is a support-channel message. Messages with direcao enviada are
// created already read; only recebida messages can be unread. Pendente marks
// a locally synthesized record the reconciler still has to deliver.
type Mensagem struct {
	ID            string    `json:"id"`
	SolicitacaoID string    `json:"solicitacaoId,omitempty"`
	Direcao       Direcao   `json:"direcao"`
	Assunto       string    `json:"assunto"`
	Conteudo      string    `json:"conteudo"`
	Remetente     string    `json:"remetente"`
	DataHora      time.Time `json:"dataHora"`
	Lida          bool      `json:"lida"`
	Pendente      bool      `json:"pendente,omitempty"`
}
