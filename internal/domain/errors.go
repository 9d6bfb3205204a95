package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrAlreadyClosed      = errors.New("el recurso ya está cerrado")
	ErrShiftClosed        = errors.New("no hay turno abierto en la unidad")
	ErrInsufficientFunds  = errors.New("pagos insuficientes para el total de la cuenta")
	ErrInvariantViolation = errors.New("violación de invariante")
	ErrPersistence        = errors.New("no se pudo completar la unidad de trabajo")
	ErrUnauthorized       = errors.New("no autorizado")
)

// ValidationError detalla qué campo no pasó la validación. errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientFundsError lleva las cifras para que la caja sepa cuánto falta cobrar.
type InsufficientFundsError struct {
	Due      decimal.Decimal
	Tendered decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: total %s, recibido %s, faltan %s",
		ErrInsufficientFunds, e.Due.StringFixed(2), e.Tendered.StringFixed(2), e.Missing().StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// Missing importe que falta por cobrar.
func (e *InsufficientFundsError) Missing() decimal.Decimal {
	return e.Due.Sub(e.Tendered)
}
