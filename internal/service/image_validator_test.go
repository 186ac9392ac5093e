package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"rostro-bot/internal/domain"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	// Relleno pseudoaleatorio determinista: un degradado comprime tan bien
	// que el PNG queda por debajo del limite que algunos tests exigen superar.
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestImageValidatorAcceptsGoodImage(t *testing.T) {
	v := NewImageValidator(DefaultMaxImageSize)

	if err := v.Validate(encodePNG(t, 200, 200)); err != nil {
		t.Fatalf("expected valid png, got %v", err)
	}
	if err := v.Validate(encodeJPEG(t, 150, 300)); err != nil {
		t.Fatalf("expected valid jpeg, got %v", err)
	}
}

func TestImageValidatorFileTooLarge(t *testing.T) {
	v := NewImageValidator(DefaultMaxImageSize)

	data := make([]byte, DefaultMaxImageSize+1)
	err := v.Validate(data)
	if err == nil {
		t.Fatalf("expected error for oversized image")
	}
	if kind := domain.KindOf(err); kind != domain.ErrKindFileTooLarge {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindFileTooLarge, kind)
	}
}

func TestImageValidatorSizeCheckedBeforeFormat(t *testing.T) {
	v := NewImageValidator(DefaultMaxImageSize)

	// Basura que ademas supera el tope: gana el chequeo de tamaño.
	data := bytes.Repeat([]byte{0xde, 0xad}, DefaultMaxImageSize)
	err := v.Validate(data)
	if kind := domain.KindOf(err); kind != domain.ErrKindFileTooLarge {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindFileTooLarge, kind)
	}
}

func TestImageValidatorUnsupportedFormat(t *testing.T) {
	v := NewImageValidator(DefaultMaxImageSize)

	err := v.Validate([]byte("esto no es una imagen"))
	if err == nil {
		t.Fatalf("expected error for non-image bytes")
	}
	if kind := domain.KindOf(err); kind != domain.ErrKindUnsupportedFormat {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindUnsupportedFormat, kind)
	}
}

func TestImageValidatorPoorQuality(t *testing.T) {
	v := NewImageValidator(DefaultMaxImageSize)

	err := v.Validate(encodePNG(t, 50, 50))
	if kind := domain.KindOf(err); kind != domain.ErrKindPoorQuality {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindPoorQuality, kind)
	}

	// Alcanza con que una dimension quede por debajo del minimo.
	err = v.Validate(encodePNG(t, 300, 80))
	if kind := domain.KindOf(err); kind != domain.ErrKindPoorQuality {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindPoorQuality, kind)
	}
}

func TestImageValidatorCustomLimit(t *testing.T) {
	v := NewImageValidator(1024)

	data := encodePNG(t, 200, 200)
	if int64(len(data)) <= 1024 {
		t.Fatalf("test image unexpectedly small: %d bytes", len(data))
	}
	err := v.Validate(data)
	if kind := domain.KindOf(err); kind != domain.ErrKindFileTooLarge {
		t.Fatalf("expected kind %s, got %s", domain.ErrKindFileTooLarge, kind)
	}
}
