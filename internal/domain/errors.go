package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los rechazos deterministas de la tuberia de analisis.
// Son errores de entrada: se reportan al usuario tal cual y nunca se reintentan.
type ErrorKind string

const (
	ErrKindNoFace            ErrorKind = "no_face"
	ErrKindMultipleFaces     ErrorKind = "multiple_faces"
	ErrKindPoorQuality       ErrorKind = "poor_quality"
	ErrKindFileTooLarge      ErrorKind = "file_too_large"
	ErrKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrKindAnalysisFailed    ErrorKind = "analysis_failed"
	ErrKindRateLimit         ErrorKind = "rate_limit"
	ErrKindProcessingError   ErrorKind = "processing_error"
)

// AnalysisError envuelve una causa opcional con su clasificacion.
type AnalysisError struct {
	Kind  ErrorKind
	Cause error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// NewAnalysisError construye un error clasificado.
func NewAnalysisError(kind ErrorKind, cause error) *AnalysisError {
	return &AnalysisError{Kind: kind, Cause: cause}
}

// KindOf extrae la clasificacion de un error de la tuberia. Cualquier error
// no clasificado se trata como fallo de procesamiento.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrKindProcessingError
}
