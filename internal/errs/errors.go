// Package errs содержит таксономию ошибок бизнес-логики.
//
// Сервисы возвращают *ValidationError, *NotFoundError или *ForbiddenTransitionError,
// обработчик выбирает ответ по KindOf(err).
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden transition")
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
)

// ValidationError хранит сообщения по полям
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Invalid создает ошибку с одним сообщением
func Invalid(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil возвращает nil, если ошибок нет
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type NotFoundError struct {
	Entity string
	ID     uint
}

func NotFound(entity string, id uint) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d не найден", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenTransitionError - попытка перехода, запрещенного машиной состояний
type ForbiddenTransitionError struct {
	Entity string
	From   string
	Action string
	Reason string
}

func Forbidden(entity, from, action, reason string) *ForbiddenTransitionError {
	return &ForbiddenTransitionError{Entity: entity, From: from, Action: action, Reason: reason}
}

func (e *ForbiddenTransitionError) Error() string {
	msg := fmt.Sprintf("%s: действие %q недоступно в статусе %q", e.Entity, e.Action, e.From)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ForbiddenTransitionError) Unwrap() error { return ErrForbidden }

// TransientJobError записывается в задачу архивации и не пробрасывается дальше
type TransientJobError struct {
	JobID   uint
	Attempt int
	Err     error
}

func (e *TransientJobError) Error() string {
	return fmt.Sprintf("archive job %d attempt %d: %v", e.JobID, e.Attempt, e.Err)
}

func (e *TransientJobError) Unwrap() error { return e.Err }

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
