package domain

// Claves requeridas de personality_traits para los scorers heuristicos.
const (
	TraitExtraversion      = "extraversion"
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitAgreeableness     = "agreeableness"
	TraitConfidence        = "confidence"
	TraitCreativity        = "creativity"
	TraitLeadership        = "leadership"
)

// Claves requeridas de emotional_state.
const (
	EmotionHappiness   = "happiness"
	EmotionCalmness    = "calmness"
	EmotionEnergyLevel = "energy_level"
	EmotionStressLevel = "stress_level"
)

// TraitKeys lista las claves de rasgos en orden de presentacion.
var TraitKeys = []string{
	TraitExtraversion,
	TraitOpenness,
	TraitConscientiousness,
	TraitAgreeableness,
	TraitConfidence,
	TraitCreativity,
	TraitLeadership,
}

// EmotionKeys lista las claves emocionales en orden de presentacion.
var EmotionKeys = []string{
	EmotionHappiness,
	EmotionCalmness,
	EmotionEnergyLevel,
	EmotionStressLevel,
}

// AnalysisReport es el resultado normalizado de cualquier estrategia de
// scoring. Todo valor numerico de traits/emotions vive en [0,1]. La presencia
// de VIP es la unica señal que usa el formateo para renderizar en modo VIP.
type AnalysisReport struct {
	PersonalityTraits map[string]float64 `json:"personality_traits"`
	EmotionalState    map[string]float64 `json:"emotional_state"`
	OverallAssessment string             `json:"overall_assessment"`
	VIP               *VIPInsights       `json:"vip,omitempty"`
}

// VIPInsights extiende el reporte base con los campos exclusivos del tier VIP.
type VIPInsights struct {
	AdvancedTraits       AdvancedTraits `json:"advanced_traits"`
	LifePatterns         LifePatterns   `json:"life_patterns"`
	CareerGuidance       string         `json:"career_guidance"`
	RelationshipInsights string         `json:"relationship_insights"`
	SuccessFactors       string         `json:"success_factors"`
	VIPAssessment        string         `json:"vip_assessment"`
}

// AdvancedTraits son puntajes enteros 0-100.
type AdvancedTraits struct {
	IntelligenceQuotient  int `json:"intelligence_quotient"`
	EmotionalIntelligence int `json:"emotional_intelligence"`
	CharismaLevel         int `json:"charisma_level"`
	BusinessAcumen        int `json:"business_acumen"`
	ArtisticTalent        int `json:"artistic_talent"`
	LeadershipPotential   int `json:"leadership_potential"`
}

// LifePatterns son etiquetas elegidas de conjuntos fijos de valores.
type LifePatterns struct {
	RiskTolerance    string `json:"risk_tolerance"`
	DecisionStyle    string `json:"decision_style"`
	SocialPreference string `json:"social_preference"`
	WorkStyle        string `json:"work_style"`
}

// Tier identifica la estrategia de scoring aplicada a una solicitud.
type Tier string

const (
	TierFree   Tier = "free"
	TierVip    Tier = "vip"
	TierDenied Tier = "denied"
)
