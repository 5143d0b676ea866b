// Package common defines shared constants and sentinel errors used across
// client and server layers of StatusBoard. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Compare-and-swap write lost against a concurrent writer.
	ErrVersionConflict = errors.New("version conflict")

	// User-facing errors. Messages are shown as is by the CLI.
	ErrSaveFailed      = errors.New("Erro ao salvar. Tente novamente.")
	ErrActionNotFound  = errors.New("Ação não encontrada")
	ErrTaskNotFound    = errors.New("Tarefa não encontrada")
	ErrCommentNotFound = errors.New("Comentário não encontrado")
	ErrUnknownTable    = errors.New("unknown table")
	ErrInvalidArgument = errors.New("invalid argument")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
