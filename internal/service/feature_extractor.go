package service

import (
	"math"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/vision"
)

// FeatureExtractor corre la validacion, la deteccion facial y deriva el
// FeatureVector. La politica de conteo de rostros es estricta: cero rostros
// y mas de uno se rechazan; la ambiguedad no se resuelve eligiendo uno.
type FeatureExtractor struct {
	validator *ImageValidator
	detector  vision.Detector
}

func NewFeatureExtractor(validator *ImageValidator, detector vision.Detector) *FeatureExtractor {
	return &FeatureExtractor{validator: validator, detector: detector}
}

func (e *FeatureExtractor) Extract(data []byte) (domain.FeatureVector, error) {
	if err := e.validator.Validate(data); err != nil {
		return domain.FeatureVector{}, err
	}

	obs, err := e.detector.Detect(data)
	if err != nil {
		// Paso la validacion pero no se pudo decodificar/procesar.
		return domain.FeatureVector{}, domain.NewAnalysisError(domain.ErrKindProcessingError, err)
	}

	switch {
	case len(obs.Faces) == 0:
		return domain.FeatureVector{}, domain.NewAnalysisError(domain.ErrKindNoFace, nil)
	case len(obs.Faces) > 1:
		return domain.FeatureVector{}, domain.NewAnalysisError(domain.ErrKindMultipleFaces, nil)
	}

	return buildFeatureVector(obs), nil
}

func buildFeatureVector(obs vision.Observation) domain.FeatureVector {
	face := obs.Faces[0]
	w := face.Box.Dx()
	h := face.Box.Dy()

	fv := domain.FeatureVector{
		FaceBox: domain.FaceBox{
			X:      face.Box.Min.X,
			Y:      face.Box.Min.Y,
			Width:  w,
			Height: h,
		},
		EyeCount:       len(face.Eyes),
		SmileDetected:  face.SmileMatches > 0,
		SmileIntensity: face.SmileMatches,
		Brightness:     face.Brightness,
		Contrast:       face.Contrast,
		FaceCenter: domain.Point{
			X: face.Box.Min.X + w/2,
			Y: face.Box.Min.Y + h/2,
		},
	}

	if imgArea := obs.ImageWidth * obs.ImageHeight; imgArea > 0 {
		fv.FaceAreaRatio = float64(w*h) / float64(imgArea)
		if fv.FaceAreaRatio > 1 {
			fv.FaceAreaRatio = 1
		}
	}

	if h > 0 {
		fv.FaceWidthHeightRatio = float64(w) / float64(h)
	}

	// Distancia y simetria solo con dos o mas ojos, usando los dos primeros
	// en orden del detector.
	if len(face.Eyes) >= 2 {
		c1x := float64(face.Eyes[0].Min.X + face.Eyes[0].Dx()/2)
		c1y := float64(face.Eyes[0].Min.Y + face.Eyes[0].Dy()/2)
		c2x := float64(face.Eyes[1].Min.X + face.Eyes[1].Dx()/2)
		c2y := float64(face.Eyes[1].Min.Y + face.Eyes[1].Dy()/2)

		distance := math.Hypot(c1x-c2x, c1y-c2y)
		symmetry := math.Abs(c1y - c2y)
		fv.EyeDistance = &distance
		fv.EyeSymmetry = &symmetry
	}

	return fv
}
