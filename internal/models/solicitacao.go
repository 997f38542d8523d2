package models

import "time"

type Prioridade string

const (
	PrioridadeBaixa Prioridade = "baixa"
	PrioridadeMedia Prioridade = "media"
	PrioridadeAlta  Prioridade = "alta"
)

func (p Prioridade) Valid() bool {
	switch p {
	case PrioridadeBaixa, PrioridadeMedia, PrioridadeAlta:
		return true
	}
	return false
}

type StatusSolicitacao string

const (
	StatusPendente              StatusSolicitacao = "pendente"
	StatusEmAnalise             StatusSolicitacao = "em_analise"
	StatusAguardandoDocumentos  StatusSolicitacao = "aguardando_documentos"
	StatusAguardandoPagamento   StatusSolicitacao = "aguardando_pagamento"
	StatusProcessando           StatusSolicitacao = "processando"
	StatusAprovada              StatusSolicitacao = "aprovada"
	StatusRejeitada             StatusSolicitacao = "rejeitada"
	StatusConcluida             StatusSolicitacao = "concluida"
	StatusCancelada             StatusSolicitacao = "cancelada"
)

func (s StatusSolicitacao) Valid() bool {
	switch s {
	case StatusPendente, StatusEmAnalise, StatusAguardandoDocumentos,
		StatusAguardandoPagamento, StatusProcessando, StatusAprovada,
		StatusRejeitada, StatusConcluida, StatusCancelada:
		return true
	}
	return false
}

type Estagio string

const (
	EstagioNovo        Estagio = "novo"
	EstagioEmAndamento Estagio = "em_andamento"
	EstagioRevisao     Estagio = "revisao"
	EstagioFinalizado  Estagio = "finalizado"
)

func (e Estagio) Valid() bool {
	switch e {
	case EstagioNovo, EstagioEmAndamento, EstagioRevisao, EstagioFinalizado:
		return true
	}
	return false
}

// Solicitacao bundles billing documents (boleto, nota fiscal) with request
// metadata. Status and estagio are tracked independently; the backend owns
// whatever workflow relates them.
type Solicitacao struct {
	ID              string            `json:"id"`
	Numero          string            `json:"numero"`
	Titulo          string            `json:"titulo"`
	Origem          string            `json:"origem"`
	Prioridade      Prioridade        `json:"prioridade"`
	Status          StatusSolicitacao `json:"status"`
	Estagio         Estagio           `json:"estagio"`
	Mes             int               `json:"mes,omitempty"` // 1..12
	Boleto          string            `json:"boleto,omitempty"`
	NotaFiscal      string            `json:"notaFiscal,omitempty"`
	Visualizado     bool              `json:"visualizado,omitempty"`
	Respondido      bool              `json:"respondido,omitempty"`
	DataCriacao     *time.Time        `json:"dataCriacao,omitempty"`
	DataAtualizacao *time.Time        `json:"dataAtualizacao,omitempty"`
}
