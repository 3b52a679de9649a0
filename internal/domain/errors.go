package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation     = errors.New("dados invalidos")
	ErrNotFound       = errors.New("registro nao encontrado")
	ErrInvalidState   = errors.New("operacao invalida para o status atual")
	ErrAuthentication = errors.New("sessao ausente ou invalida")
	ErrStorage        = errors.New("falha no armazenamento")
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lista todos os campos rejeitados numa escrita.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	partes := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		partes[i] = f.Field + ": " + f.Reason
	}
	return ErrValidation.Error() + ": " + strings.Join(partes, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil devolve nil quando nenhum campo foi rejeitado.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
