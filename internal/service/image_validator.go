package service

import (
	"bytes"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"rostro-bot/internal/domain"
)

// DefaultMaxImageSize es el tope de tamaño de archivo: 10MB.
const DefaultMaxImageSize = 10 * 1024 * 1024

// MinImageDimension es el minimo de ancho y alto aceptado.
const MinImageDimension = 100

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// ImageValidator aplica las reglas de entrada sobre los bytes crudos, en
// orden fijo: tamaño, formato, dimensiones. Gana el primer chequeo que falla.
type ImageValidator struct {
	maxBytes int64
}

func NewImageValidator(maxBytes int64) *ImageValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageSize
	}
	return &ImageValidator{maxBytes: maxBytes}
}

func (v *ImageValidator) Validate(data []byte) error {
	if int64(len(data)) > v.maxBytes {
		return domain.NewAnalysisError(domain.ErrKindFileTooLarge,
			fmt.Errorf("image is %d bytes, limit %d", len(data), v.maxBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || !supportedFormats[format] {
		return domain.NewAnalysisError(domain.ErrKindUnsupportedFormat, err)
	}

	if cfg.Width < MinImageDimension || cfg.Height < MinImageDimension {
		return domain.NewAnalysisError(domain.ErrKindPoorQuality,
			fmt.Errorf("image is %dx%d, minimum %dx%d", cfg.Width, cfg.Height, MinImageDimension, MinImageDimension))
	}

	return nil
}
