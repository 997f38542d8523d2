package models

import "time"

// Lancamento is a raw billing entry fetched from the backend. Historico
// registros are derived from these, never stored independently.
type Lancamento struct {
	ID              string     `json:"id"`
	Tipo            string     `json:"tipo"`
	Protocolo       string     `json:"protocolo"`
	Status          string     `json:"status"`
	Titulo          string     `json:"titulo"`
	DataCriacao     time.Time  `json:"dataCriacao"`
	DataAtualizacao *time.Time `json:"dataAtualizacao,omitempty"`
}

type HistoricoRegistro struct {
	ID              string     `json:"id"`
	Tipo            string     `json:"tipo"`
	Protocolo       string     `json:"protocolo"`
	Status          string     `json:"status"`
	Titulo          string     `json:"titulo"`
	DataCriacao     time.Time  `json:"dataCriacao"`
	DataAtualizacao *time.Time `json:"dataAtualizacao,omitempty"`
}

// MapearHistorico derives historico registros from lançamentos, keeping the
// first occurrence of each protocolo. Input order is preserved.
func MapearHistorico(lancamentos []Lancamento) []HistoricoRegistro {
	vistos := make(map[string]struct{}, len(lancamentos))
	registros := make([]HistoricoRegistro, 0, len(lancamentos))
	for _, l := range lancamentos {
		if l.Protocolo != "" {
			if _, ok := vistos[l.Protocolo]; ok {
				continue
			}
			vistos[l.Protocolo] = struct{}{}
		}
		registros = append(registros, HistoricoRegistro{
			ID:              l.ID,
			Tipo:            l.Tipo,
			Protocolo:       l.Protocolo,
			Status:          l.Status,
			Titulo:          l.Titulo,
			DataCriacao:     l.DataCriacao,
			DataAtualizacao: l.DataAtualizacao,
		})
	}
	return registros
}
