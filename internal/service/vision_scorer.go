package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rostro-bot/internal/domain"
	"rostro-bot/internal/llm"
)

// visionPrompt es el contrato de instrucciones fijo: pide exactamente la
// forma personality_traits / emotional_state / overall_assessment.
const visionPrompt = `Eres un experto en psicologia y lectura de rostros. Analiza la imagen y estima:

1. Rasgos de personalidad (numero entre 0 y 1): extraversion, openness, conscientiousness, agreeableness, confidence, creativity, leadership.
2. Estado emocional (numero entre 0 y 1): happiness, calmness, energy_level, stress_level.
3. Una evaluacion general de la personalidad en español.

Devuelve SOLO un JSON con este formato:
{
  "personality_traits": {"extraversion": 0.0, "openness": 0.0, "conscientiousness": 0.0, "agreeableness": 0.0, "confidence": 0.0, "creativity": 0.0, "leadership": 0.0},
  "emotional_state": {"happiness": 0.0, "calmness": 0.0, "energy_level": 0.0, "stress_level": 0.0},
  "overall_assessment": "texto en español"
}

Datos complementarios de la imagen:
- Dimensiones del rostro: %dx%d
- Ojos detectados: %d
- Sonrisa detectada: %t
- Proporcion ancho/alto del rostro: %.2f
- Brillo: %.1f
- Contraste: %.1f

Con esta informacion y el analisis visual, entrega una evaluacion precisa y con sentido.`

// fallbackAssessment es la frase fija del reporte neutro.
const fallbackAssessment = "Lo siento, por ahora no puedo hacer un análisis detallado. Por favor intenta de nuevo más tarde."

// VisionScorer delega el scoring en un modelo de vision externo. Nunca deja
// escapar un fallo: respuesta malformada, error de API o timeout degradan al
// reporte neutro fijo, que es un AnalysisReport valido por si mismo.
type VisionScorer struct {
	client  llm.VisionClient
	timeout time.Duration
	logger  *zap.Logger
}

func NewVisionScorer(client llm.VisionClient, timeout time.Duration, logger *zap.Logger) *VisionScorer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisionScorer{client: client, timeout: timeout, logger: logger}
}

// Score llama al modelo con la imagen y el contexto del FeatureVector.
func (s *VisionScorer) Score(ctx context.Context, image []byte, fv domain.FeatureVector) domain.AnalysisReport {
	prompt := fmt.Sprintf(visionPrompt,
		fv.FaceBox.Width, fv.FaceBox.Height,
		fv.EyeCount,
		fv.SmileDetected,
		fv.FaceWidthHeightRatio,
		fv.Brightness,
		fv.Contrast,
	)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.AnalyzeImage(ctx, prompt, image)
	if err != nil {
		s.logger.Warn("vision model call failed", zap.Error(err))
		return FallbackReport()
	}

	report, err := parseAnalysisResponse(raw)
	if err != nil {
		s.logger.Warn("vision model response invalid", zap.Error(err))
		return FallbackReport()
	}
	return report
}

// FallbackReport es el reporte neutro fijo: todo 0.5 salvo stress_level 0.3.
// Es un valor puro y reproducible, sin dependencia del numero de llamadas.
func FallbackReport() domain.AnalysisReport {
	return domain.AnalysisReport{
		PersonalityTraits: map[string]float64{
			domain.TraitExtraversion:      0.5,
			domain.TraitOpenness:          0.5,
			domain.TraitConscientiousness: 0.5,
			domain.TraitAgreeableness:     0.5,
			domain.TraitConfidence:        0.5,
			domain.TraitCreativity:        0.5,
			domain.TraitLeadership:        0.5,
		},
		EmotionalState: map[string]float64{
			domain.EmotionHappiness:   0.5,
			domain.EmotionCalmness:    0.5,
			domain.EmotionEnergyLevel: 0.5,
			domain.EmotionStressLevel: 0.3,
		},
		OverallAssessment: fallbackAssessment,
	}
}
