package domain

// OutcomeStatus enumera los resultados terminales de una foto enviada.
type OutcomeStatus string

const (
	OutcomeRateLimited OutcomeStatus = "rate_limited"
	OutcomeRejected    OutcomeStatus = "rejected"
	OutcomeDenied      OutcomeStatus = "entitlement_denied"
	OutcomeSuccess     OutcomeStatus = "success"
)

// Outcome es lo que la tuberia devuelve a la capa de transporte.
// Solo los campos del estado correspondiente estan poblados:
// RateLimited lleva WaitSeconds, Rejected lleva Reject, Success lleva
// Report y Tier.
type Outcome struct {
	Status      OutcomeStatus   `json:"status"`
	WaitSeconds int             `json:"wait_seconds,omitempty"`
	Reject      ErrorKind       `json:"reject,omitempty"`
	Report      *AnalysisReport `json:"report,omitempty"`
	Tier        Tier            `json:"tier,omitempty"`
}
