package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInsufficientQuantity = errors.New("cantidad insuficiente")
	ErrValidation           = errors.New("datos inválidos")
	ErrStoreUnavailable     = errors.New("almacén de registros no disponible")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrInvalidCredentials   = errors.New("credenciales inválidas")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
)

// ValidationError indica el campo rechazado. errors.Is(err, ErrValidation) es true.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientQuantityError reporta la cantidad vigente leída del almacén.
type InsufficientQuantityError struct {
	Requested int64
	Available int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("%s: solicitado %d, disponible %d", ErrInsufficientQuantity, e.Requested, e.Available)
}

func (e *InsufficientQuantityError) Is(target error) bool { return target == ErrInsufficientQuantity }

// StoreError envuelve cualquier fallo del almacén; se desenvuelve a ErrStoreUnavailable y a la causa.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// StoreFailure envuelve err salvo que ya sea un error de dominio conocido.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsDomainError indica si err pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInsufficientQuantity, ErrValidation, ErrStoreUnavailable,
		ErrUnauthorized, ErrInvalidCredentials, ErrForbidden, ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
