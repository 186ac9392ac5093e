package telegram

import (
	"fmt"
	"strings"

	"rostro-bot/internal/domain"
)

var traitLabels = map[string]string{
	domain.TraitExtraversion:      "🎉 Extraversión",
	domain.TraitOpenness:          "🌈 Apertura",
	domain.TraitConscientiousness: "📋 Responsabilidad",
	domain.TraitAgreeableness:     "🤝 Amabilidad",
	domain.TraitConfidence:        "💪 Confianza",
	domain.TraitCreativity:        "🎨 Creatividad",
	domain.TraitLeadership:        "👑 Liderazgo",
}

var emotionLabels = map[string]string{
	domain.EmotionHappiness:   "Alegría",
	domain.EmotionCalmness:    "Calma",
	domain.EmotionEnergyLevel: "Nivel de energía",
	domain.EmotionStressLevel: "Nivel de estrés",
}

var lifePatternLabels = []struct {
	label string
	value func(domain.LifePatterns) string
}{
	{"⚡ Tolerancia al riesgo", func(lp domain.LifePatterns) string { return lp.RiskTolerance }},
	{"🎯 Estilo de decisión", func(lp domain.LifePatterns) string { return lp.DecisionStyle }},
	{"👥 Preferencia social", func(lp domain.LifePatterns) string { return lp.SocialPreference }},
	{"💪 Estilo de trabajo", func(lp domain.LifePatterns) string { return lp.WorkStyle }},
}

const reportDisclaimer = "⚠️ *Atención:* este análisis se basa en rasgos visibles del rostro y es solo para entretenerte. Para una evaluación seria de personalidad consulta a un profesional."

// percentage renderiza un valor [0,1] como porcentaje entero.
func percentage(v float64) int {
	if v <= 1 {
		return int(v * 100)
	}
	return int(v)
}

// FormatReport arma el reporte en Markdown para Telegram. Las secciones VIP
// se renderizan unicamente si el reporte trae VIPInsights; las claves
// ausentes del reporte simplemente no aparecen.
func FormatReport(report domain.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("✨ *¡El resultado mágico de tu análisis de personalidad!* 🎭\n\n")

	if len(report.PersonalityTraits) > 0 {
		b.WriteString("🧠 *Tus rasgos de personalidad:*\n")
		for _, key := range domain.TraitKeys {
			v, ok := report.PersonalityTraits[key]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "• %s: %d%%\n", traitLabels[key], percentage(v))
		}
		b.WriteString("\n")
	}

	if len(report.EmotionalState) > 0 {
		b.WriteString("😊 *Tu estado emocional:*\n")
		for _, key := range domain.EmotionKeys {
			v, ok := report.EmotionalState[key]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "• %s: %d%%\n", emotionLabels[key], percentage(v))
		}
		b.WriteString("\n")
	}

	if report.OverallAssessment != "" {
		b.WriteString("📝 *Evaluación general:*\n")
		b.WriteString(report.OverallAssessment)
		b.WriteString("\n\n")
	}

	if report.VIP != nil {
		writeVipSections(&b, report.VIP)
	}

	b.WriteString(reportDisclaimer)
	return b.String()
}

func writeVipSections(b *strings.Builder, vip *domain.VIPInsights) {
	adv := vip.AdvancedTraits
	b.WriteString("🎯 *Rasgos avanzados (VIP):*\n")
	fmt.Fprintf(b, "• 🧠 Coeficiente intelectual: %d%%\n", adv.IntelligenceQuotient)
	fmt.Fprintf(b, "• 💝 Inteligencia emocional: %d%%\n", adv.EmotionalIntelligence)
	fmt.Fprintf(b, "• ✨ Nivel de carisma: %d%%\n", adv.CharismaLevel)
	fmt.Fprintf(b, "• 💼 Visión de negocios: %d%%\n", adv.BusinessAcumen)
	fmt.Fprintf(b, "• 🎨 Talento artístico: %d%%\n", adv.ArtisticTalent)
	fmt.Fprintf(b, "• 👑 Potencial de liderazgo: %d%%\n", adv.LeadershipPotential)
	b.WriteString("\n")

	b.WriteString("🔮 *Patrones de vida (VIP):*\n")
	for _, entry := range lifePatternLabels {
		if v := entry.value(vip.LifePatterns); v != "" {
			fmt.Fprintf(b, "• %s: %s\n", entry.label, v)
		}
	}
	b.WriteString("\n")

	if vip.CareerGuidance != "" {
		b.WriteString("💼 *Orientación profesional (VIP):*\n")
		b.WriteString(vip.CareerGuidance)
		b.WriteString("\n\n")
	}
	if vip.RelationshipInsights != "" {
		b.WriteString("💕 *Tus relaciones (VIP):*\n")
		b.WriteString(vip.RelationshipInsights)
		b.WriteString("\n\n")
	}
	if vip.SuccessFactors != "" {
		b.WriteString("🎯 *Factores de éxito (VIP):*\n")
		b.WriteString(vip.SuccessFactors)
		b.WriteString("\n\n")
	}
	if vip.VIPAssessment != "" {
		b.WriteString(vip.VIPAssessment)
		b.WriteString("\n\n")
	}

	b.WriteString("👑 *¡Felicitaciones! Eres miembro VIP y disfrutas de los análisis especializados.*\n\n")
}
