package models

// Empresa is a registered company. CNPJs are stored normalized: exactly 14
// digits, no punctuation.
type Empresa struct {
	ID    string   `json:"id"`
	Nome  string   `json:"nome"`
	CNPJs []string `json:"cnpjs"`
	Ativo bool     `json:"ativo"`
}
