package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrProductUnavailable     = errors.New("producto no disponible")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrDuplicateRequest       = errors.New("solicitud duplicada")
	ErrPersistence            = errors.New("error de persistencia")
)

// ValidationError indica el primer campo inválido de una entrada.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProductUnavailableError lista los productos inexistentes, inactivos o sin stock.
type ProductUnavailableError struct {
	ProductIDs []string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("productos no disponibles: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *ProductUnavailableError) Is(target error) bool { return target == ErrProductUnavailable }

// InsufficientStockError indica que una línea pide más unidades de las disponibles.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidStateTransitionError transición de estado de orden no permitida.
type InvalidStateTransitionError struct {
	OrderID string
	From    string
	To      string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("orden %s: no se puede pasar a %s", e.OrderID, e.To)
	}
	return fmt.Sprintf("orden %s: no se puede pasar de %s a %s", e.OrderID, e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// DuplicateRequestError la clave de idempotencia ya fue usada.
// OrderID puede ir vacío si la solicitud original aún está en curso.
type DuplicateRequestError struct {
	RequestID string
	OrderID   string
}

func (e *DuplicateRequestError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("solicitud %s en curso", e.RequestID)
	}
	return fmt.Sprintf("solicitud %s ya procesada (orden %s)", e.RequestID, e.OrderID)
}

func (e *DuplicateRequestError) Is(target error) bool { return target == ErrDuplicateRequest }

// PersistenceError envuelve un fallo del almacenamiento.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// WrapPersistence deja pasar los errores de dominio y envuelve el resto como PersistenceError.
func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomainError indica si err es (o envuelve) un error de negocio conocido.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrUserNotFound, ErrEmailAlreadyExists, ErrInvalidInput, ErrDuplicate,
		ErrUnauthorized, ErrForbidden, ErrConflict, ErrInsufficientStock, ErrProductUnavailable,
		ErrInvalidStateTransition, ErrDuplicateRequest, ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
