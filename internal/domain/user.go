package domain

import "time"

// User guarda el estado de derechos de un usuario de Telegram.
// free_analysis_used pasa de false a true exactamente una vez y nunca vuelve.
// is_vip cae a false cuando una lectura observa vip_expires en el pasado
// (expiracion perezosa, no hay barrido de fondo).
type User struct {
	TelegramID       int64      `json:"telegram_id"`
	Username         string     `json:"username,omitempty"`
	FirstName        string     `json:"first_name,omitempty"`
	IsVip            bool       `json:"is_vip"`
	VipExpires       *time.Time `json:"vip_expires,omitempty"`
	FreeAnalysisUsed bool       `json:"free_analysis_used"`
	CreatedAt        time.Time  `json:"created_at"`
	LastAnalysis     *time.Time `json:"last_analysis,omitempty"`
}

// VipActiveAt indica si la suscripcion VIP sigue vigente en el instante dado.
func (u User) VipActiveAt(now time.Time) bool {
	return u.IsVip && u.VipExpires != nil && u.VipExpires.After(now)
}
