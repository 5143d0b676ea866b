package models

import (
	"sort"
	"strings"
)

const (
	MsgRequired      = "Campo obrigatório"
	MsgInvalidDate   = "Data inválida (use DD/MM/AAAA)"
	MsgInvalidStatus = "Status inválido"
)

// ValidationErrors maps a form field to its error message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v[field] = MsgRequired
	}
}

func (v ValidationErrors) dueDate(field, value string) {
	if strings.TrimSpace(value) == "" {
		v[field] = MsgRequired
		return
	}
	if _, err := ParseDueDate(value, nil); err != nil {
		v[field] = MsgInvalidDate
	}
}

func (v ValidationErrors) status(field string, s WorkflowStatus) {
	if !s.Valid() {
		v[field] = MsgInvalidStatus
	}
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
