package service

import (
	"math/rand"
	"strings"
	"time"

	"rostro-bot/internal/domain"
)

// Rand es la fuente de aleatoriedad inyectable de los scorers heuristicos.
// En produccion es math/rand; los tests sustituyen una fuente fija para
// poder afirmar formulas exactas.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// PersonalityScorer produce reportes heuristicos. Es puro computo: ninguna
// estrategia heuristica puede fallar.
type PersonalityScorer struct {
	rng Rand
}

func NewPersonalityScorer(rng Rand) *PersonalityScorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PersonalityScorer{rng: rng}
}

// jitter devuelve un valor uniforme en [min, max).
func (s *PersonalityScorer) jitter(min, max float64) float64 {
	return min + s.rng.Float64()*(max-min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ScoreFree deriva el reporte base de tres lineas de base del rostro:
// sonrisa, brillo y proporcion ancho/alto, mas un jitter acotado por campo.
func (s *PersonalityScorer) ScoreFree(fv domain.FeatureVector) domain.AnalysisReport {
	happinessBase := 0.4
	if fv.SmileDetected {
		happinessBase = 0.8
	}

	energyBase := fv.Brightness / 150
	if energyBase > 1 {
		energyBase = 1
	}
	if energyBase < 0 {
		energyBase = 0
	}

	confidenceBase := 0.5
	if fv.FaceWidthHeightRatio >= 0.7 && fv.FaceWidthHeightRatio <= 1.3 {
		confidenceBase = 0.7
	}

	stress := 0.3 - happinessBase*0.2
	if stress < 0 {
		stress = 0
	}

	return domain.AnalysisReport{
		PersonalityTraits: map[string]float64{
			domain.TraitExtraversion:      clamp01(happinessBase + s.jitter(-0.1, 0.2)),
			domain.TraitOpenness:          clamp01(energyBase + s.jitter(-0.1, 0.2)),
			domain.TraitConscientiousness: clamp01(confidenceBase + s.jitter(-0.1, 0.2)),
			domain.TraitAgreeableness:     clamp01(happinessBase + s.jitter(-0.1, 0.1)),
			domain.TraitConfidence:        confidenceBase,
			domain.TraitCreativity:        clamp01(energyBase + s.jitter(-0.2, 0.3)),
			domain.TraitLeadership:        clamp01(confidenceBase + s.jitter(-0.1, 0.2)),
		},
		EmotionalState: map[string]float64{
			domain.EmotionHappiness:   happinessBase,
			domain.EmotionCalmness:    clamp01(0.6 + s.jitter(-0.1, 0.2)),
			domain.EmotionEnergyLevel: energyBase,
			domain.EmotionStressLevel: stress,
		},
		OverallAssessment: buildAssessment(fv.SmileDetected, fv.Brightness, fv.FaceWidthHeightRatio),
	}
}

// ScoreVip es el reporte base mas la extension VIP.
func (s *PersonalityScorer) ScoreVip(fv domain.FeatureVector) domain.AnalysisReport {
	return s.ExtendVip(s.ScoreFree(fv), fv)
}

// ExtendVip agrega la extension VIP a un reporte base ya calculado; se usa
// tambien cuando la base viene del modelo de vision externo.
func (s *PersonalityScorer) ExtendVip(base domain.AnalysisReport, fv domain.FeatureVector) domain.AnalysisReport {
	// Puntaje fijo mas un sumando aleatorio acotado, topeado en 100.
	score := func(fixed, addMin, addMax int) int {
		v := fixed + addMin + s.rng.Intn(addMax-addMin+1)
		if v > 100 {
			v = 100
		}
		return v
	}
	pick := func(options []string) string {
		return options[s.rng.Intn(len(options))]
	}

	base.VIP = &domain.VIPInsights{
		AdvancedTraits: domain.AdvancedTraits{
			IntelligenceQuotient:  score(70, 10, 25),
			EmotionalIntelligence: score(60, 15, 30),
			CharismaLevel:         score(50, 20, 40),
			BusinessAcumen:        score(40, 20, 45),
			ArtisticTalent:        score(45, 15, 40),
			LeadershipPotential:   score(55, 20, 35),
		},
		LifePatterns: domain.LifePatterns{
			RiskTolerance:    pick(riskToleranceLabels),
			DecisionStyle:    pick(decisionStyleLabels),
			SocialPreference: pick(socialPreferenceLabels),
			WorkStyle:        pick(workStyleLabels),
		},
		CareerGuidance:       careerGuidance(base.PersonalityTraits),
		RelationshipInsights: relationshipInsights(base.PersonalityTraits),
		SuccessFactors:       successFactorsText,
		VIPAssessment:        vipAssessmentText,
	}
	return base
}

var (
	riskToleranceLabels    = []string{"conservador", "equilibrado", "arriesgado"}
	decisionStyleLabels    = []string{"analítico", "intuitivo", "mixto"}
	socialPreferenceLabels = []string{"introvertido", "extrovertido", "ambivertido"}
	workStyleLabels        = []string{"independiente", "colaborativo", "líder"}
)

const (
	successFactorsText = "Para alcanzar tus metas, concentrate en tus fortalezas de personalidad y aprovecha lo que te hace unico."
	vipAssessmentText  = "El análisis especializado muestra que tienes potenciales fuera de lo común. " +
		"Los rasgos de tu rostro sugieren una personalidad compleja y atractiva. " +
		"Tus puntos fuertes superan el promedio en ciertas áreas."
)

// Umbrales de las frases del texto de evaluacion.
const (
	brightHighThreshold = 120
	brightLowThreshold  = 80
)

func buildAssessment(hasSmile bool, brightness, faceRatio float64) string {
	var parts []string

	if hasSmile {
		parts = append(parts, "Eres una persona alegre y positiva que transmite buena energía a quienes te rodean.")
	} else {
		parts = append(parts, "Eres una persona seria y reflexiva que pone mucho cuidado en sus decisiones.")
	}

	if brightness > brightHighThreshold {
		parts = append(parts, "Tu rostro irradia energía alta y un ánimo positivo.")
	} else if brightness < brightLowThreshold {
		parts = append(parts, "Eres una persona calma y de pensamiento profundo.")
	}

	if faceRatio >= 0.8 && faceRatio <= 1.2 {
		parts = append(parts, "Se nota equilibrio y armonía en tu personalidad.")
	}

	return strings.Join(parts, " ")
}

func careerGuidance(traits map[string]float64) string {
	switch {
	case traits[domain.TraitLeadership] > 0.7:
		return "Tienes perfil para puestos de gestión, emprendimiento y liderazgo de equipos."
	case traits[domain.TraitCreativity] > 0.7:
		return "Tu talento destaca en áreas artísticas, de diseño y creatividad."
	default:
		return "Rendirás mejor en trabajos especializados y analíticos."
	}
}

func relationshipInsights(traits map[string]float64) string {
	if traits[domain.TraitAgreeableness] > 0.7 {
		return "En tus relaciones eres una persona atenta y afectuosa, una pareja ideal."
	}
	return "En tus relaciones valoras la independencia y necesitas tu espacio personal."
}
