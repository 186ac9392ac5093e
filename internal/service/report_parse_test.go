package service

import (
	"testing"

	"rostro-bot/internal/domain"
)

const validModelResponse = `{
	"personality_traits": {"extraversion": 0.7, "openness": 0.6, "conscientiousness": 0.8, "agreeableness": 0.9, "confidence": 0.5, "creativity": 0.4, "leadership": 0.3},
	"emotional_state": {"happiness": 0.8, "calmness": 0.6, "energy_level": 0.7, "stress_level": 0.2},
	"overall_assessment": "  Una persona abierta y amable.  "
}`

func TestParseAnalysisResponseValid(t *testing.T) {
	report, err := parseAnalysisResponse(validModelResponse)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := report.PersonalityTraits[domain.TraitExtraversion]; got != 0.7 {
		t.Fatalf("expected extraversion 0.7, got %f", got)
	}
	if got := report.EmotionalState[domain.EmotionStressLevel]; got != 0.2 {
		t.Fatalf("expected stress 0.2, got %f", got)
	}
	if report.OverallAssessment != "Una persona abierta y amable." {
		t.Fatalf("expected trimmed assessment, got %q", report.OverallAssessment)
	}
}

func TestParseAnalysisResponseWithFences(t *testing.T) {
	raw := "```json\n" + validModelResponse + "\n```"
	report, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := report.PersonalityTraits[domain.TraitOpenness]; got != 0.6 {
		t.Fatalf("expected openness 0.6, got %f", got)
	}
}

func TestParseAnalysisResponseWithSurroundingProse(t *testing.T) {
	raw := "Claro, aquí tienes el análisis:\n" + validModelResponse + "\nEspero que te sirva."
	report, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := report.PersonalityTraits[domain.TraitAgreeableness]; got != 0.9 {
		t.Fatalf("expected agreeableness 0.9, got %f", got)
	}
}

func TestParseAnalysisResponseClampsOutOfRange(t *testing.T) {
	raw := `{
		"personality_traits": {"extraversion": 1.5, "openness": -0.3},
		"emotional_state": {"happiness": 2.0},
		"overall_assessment": "ok"
	}`
	report, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := report.PersonalityTraits[domain.TraitExtraversion]; got != 1.0 {
		t.Fatalf("expected extraversion clamped to 1.0, got %f", got)
	}
	if got := report.PersonalityTraits[domain.TraitOpenness]; got != 0.0 {
		t.Fatalf("expected openness clamped to 0.0, got %f", got)
	}
	if got := report.EmotionalState[domain.EmotionHappiness]; got != 1.0 {
		t.Fatalf("expected happiness clamped to 1.0, got %f", got)
	}
}

func TestParseAnalysisResponseOmitsMissingAndNonNumeric(t *testing.T) {
	raw := `{
		"personality_traits": {"extraversion": 0.7, "creativity": "alta"},
		"emotional_state": {"happiness": 0.5},
		"overall_assessment": "ok"
	}`
	report, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := report.PersonalityTraits[domain.TraitCreativity]; ok {
		t.Fatalf("non-numeric trait must be omitted, not invented")
	}
	if _, ok := report.PersonalityTraits[domain.TraitOpenness]; ok {
		t.Fatalf("missing trait must be omitted, not invented")
	}
	if got := report.PersonalityTraits[domain.TraitExtraversion]; got != 0.7 {
		t.Fatalf("expected extraversion 0.7, got %f", got)
	}
}

func TestParseAnalysisResponseNoJSON(t *testing.T) {
	if _, err := parseAnalysisResponse("lo siento, no puedo analizar la imagen"); err == nil {
		t.Fatalf("expected error when response carries no JSON object")
	}
	if _, err := parseAnalysisResponse(""); err == nil {
		t.Fatalf("expected error for empty response")
	}
}

func TestFirstJSONObjectRespectsStrings(t *testing.T) {
	input := `ruido {"a": "llave } con brace", "b": {"c": 1}} cola`
	want := `{"a": "llave } con brace", "b": {"c": 1}}`
	if got := firstJSONObject(input); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if got := firstJSONObject(`{"incompleto": `); got != "" {
		t.Fatalf("expected empty string for unbalanced object, got %q", got)
	}
}
