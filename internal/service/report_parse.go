package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"rostro-bot/internal/domain"
)

// cleanModelJSONResponse quita fences ```json ... ``` y BOM, dejando el
// contenido usable.
func cleanModelJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\ufeff")

	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// firstJSONObject extrae el primer objeto JSON balanceado del texto,
// respetando strings y escapes. Devuelve "" si no hay objeto completo.
func firstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}

// parseAnalysisResponse valida la respuesta cruda del modelo de vision.
// Cada hoja numerica se aprieta a [0,1] de forma independiente; una clave
// requerida ausente o no numerica simplemente se omite, nunca se inventa.
func parseAnalysisResponse(raw string) (domain.AnalysisReport, error) {
	cleaned := cleanModelJSONResponse(raw)

	candidate := firstJSONObject(cleaned)
	if candidate == "" {
		candidate = firstJSONObject(raw)
	}
	if candidate == "" {
		return domain.AnalysisReport{}, fmt.Errorf("no JSON object in model response")
	}

	var tmp struct {
		PersonalityTraits map[string]any `json:"personality_traits"`
		EmotionalState    map[string]any `json:"emotional_state"`
		OverallAssessment any            `json:"overall_assessment"`
	}
	if err := json.Unmarshal([]byte(candidate), &tmp); err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("parse model response: %w", err)
	}

	report := domain.AnalysisReport{
		PersonalityTraits: map[string]float64{},
		EmotionalState:    map[string]float64{},
	}

	for _, key := range domain.TraitKeys {
		if v, ok := numericValue(tmp.PersonalityTraits[key]); ok {
			report.PersonalityTraits[key] = clamp01(v)
		}
	}
	for _, key := range domain.EmotionKeys {
		if v, ok := numericValue(tmp.EmotionalState[key]); ok {
			report.EmotionalState[key] = clamp01(v)
		}
	}
	if s, ok := tmp.OverallAssessment.(string); ok {
		report.OverallAssessment = strings.TrimSpace(s)
	}

	return report, nil
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
