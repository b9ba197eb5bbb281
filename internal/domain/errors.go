package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrProductNotFound      = errors.New("producto no encontrado")
	ErrLotNotFound          = errors.New("lote no encontrado")
	ErrInsufficientLotStock = errors.New("cantidad solicitada excede el remanente del lote")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
)

// StockInsufficientError indica que el stock disponible no alcanza para la
// cantidad solicitada de un producto. Se detecta en validación, antes de
// escribir nada.
type StockInsufficientError struct {
	Code      string
	Available int64
	Requested int64
}

func (e *StockInsufficientError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d",
		e.Code, e.Available, e.Requested)
}

// TransactionFailedError envuelve el error que obligó a revertir una mutación
// ya iniciada. El caller nunca observa estado parcial: la transacción se
// revierte completa antes de devolver este error.
type TransactionFailedError struct {
	Cause error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transacción revertida: %v", e.Cause)
}

func (e *TransactionFailedError) Unwrap() error { return e.Cause }

// AnulmentNotAllowedError indica que una venta no puede anularse
// (fuera de ventana, ya anulada, etc.).
type AnulmentNotAllowedError struct {
	Reason string
}

func (e *AnulmentNotAllowedError) Error() string {
	return "anulación no permitida: " + e.Reason
}

// IntegrityViolationError indica corrupción detectada entre cabecera y
// detalles (el total no coincide con la suma de subtotales).
type IntegrityViolationError struct {
	Details string
}

func (e *IntegrityViolationError) Error() string {
	return "violación de integridad: " + e.Details
}
