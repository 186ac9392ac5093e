package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rostro-bot/internal/domain"
)

// Etiquetas de los botones del menu principal. El router matchea el texto
// literal del boton, asi que son constantes compartidas.
const (
	buttonAnalyze = "📸 Analizar personalidad"
	buttonVip     = "👑 Suscripción VIP"
	buttonStatus  = "📊 Mi estado"
	buttonHelp    = "❓ Ayuda"
	buttonAbout   = "🎯 Acerca del bot"
	buttonSupport = "📞 Soporte"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAnalyze),
			tgbotapi.NewKeyboardButton(buttonVip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonStatus),
			tgbotapi.NewKeyboardButton(buttonHelp),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonAbout),
			tgbotapi.NewKeyboardButton(buttonSupport),
		),
	)
}

const welcomeMessage = `✨ *¡Bienvenido al analizador mágico de personalidad!* 🎭

📸 Mándame una foto clara de tu rostro y te cuento qué dice de tu personalidad.

🎁 El primer análisis es *gratis*. Con la suscripción VIP desbloqueas análisis ilimitados y reportes avanzados.

👇 Usa el menú para empezar.`

const analyzeHelpMessage = `📸 *¡Listo para analizar tu personalidad!* ✨

🎯 *Pasos:*
📷 Manda una foto clara de tu rostro
✨ Cuida que tenga buena luz y calidad
👤 Que aparezca una sola cara en la imagen

🚀 *¡Manda tu foto ahora!* 💫`

const helpMessage = `❓ *Ayuda*

📸 Manda una foto de tu rostro para recibir tu análisis de personalidad.
🎁 El primer análisis es gratuito.
👑 Con /vip obtienes 30 días de análisis ilimitados con reportes avanzados.
📊 Con el botón "Mi estado" ves tu suscripción actual.

⚠️ El análisis se basa en rasgos visibles del rostro y es solo para entretenerte.`

const aboutMessage = `🎯 *Acerca del bot*

🔮 Este bot analiza los rasgos visibles de tu rostro y arma un perfil de personalidad para divertirte.
👑 Los miembros VIP reciben además análisis avanzados con modelos de visión.

⚠️ Los resultados son de entretenimiento, no una evaluación psicológica.`

const supportMessage = `📞 *Soporte*

💬 ¿Algún problema con el bot o con tu pago?
✉️ Escríbenos y te respondemos lo antes posible.`

const processingMessage = `🔮 *Analizando tu rostro...* ✨

⏳ Dame unos segundos, estoy leyendo tus rasgos. 🧠`

const subscriptionOfferMessage = `💎 *¡Tu análisis gratuito se terminó!* ✨

🔥 *Pero esto recién empieza.*
¿Quieres saber qué secretos más profundos esconde tu personalidad?

🎯 *Con la suscripción VIP recibes:*
🧠 Coeficiente intelectual e inteligencia emocional
💼 Orientación profesional personalizada
💕 Análisis de tus relaciones
✨ Nivel de carisma y atractivo
🎨 Talentos artísticos ocultos
👑 Potencial de liderazgo

💰 *¡Solo 100.000 tomanes por un mes completo!*
🔄 *Análisis ilimitados + funciones VIP*

🚀 *Toca /vip para suscribirte.*`

const vipPurchaseMessage = `👑 *Suscripción VIP* 💎

🎯 *Estás comprando la suscripción mensual VIP:*

💰 *Precio:* 100.000 tomanes
⏰ *Duración:* 30 días
🔄 *Análisis:* ilimitados durante el mes

🔗 *En un momento recibes el link de pago seguro...*`

const alreadyVipMessage = `👑 *¡Ya eres miembro VIP!* ✨

📸 Manda tus fotos y disfruta de los análisis completos. 💎`

const alreadyUsedFreeMessage = `🔒 *Ya usaste tu análisis gratuito.*

👑 Suscríbete con /vip para seguir analizando sin límites. 💎`

const paymentSuccessMessage = `🎉 *¡Felicitaciones! El pago fue exitoso.* 💎

👑 *¡Ahora eres miembro VIP!* ✨

🚀 Manda una foto nueva para ver tu análisis VIP. 📷✨`

const paymentFailedMessage = `❌ *El pago no se pudo completar.*

🔄 Intenta de nuevo con /vip o contacta a soporte si el problema sigue.`

const paymentLinkFailedMessage = `❌ *Hubo un problema generando el link de pago.*

🔄 Por favor intenta de nuevo en unos minutos.`

const paymentLinkThrottledMessage = `⏳ Ya te generé un link de pago hace poco. Usalo o espera unos minutos antes de pedir otro.`

// errorMessages mapea cada rechazo de la tuberia a su mensaje para el
// usuario. rate_limit se arma aparte porque interpola la espera.
var errorMessages = map[domain.ErrorKind]string{
	domain.ErrKindNoFace:            "🔍 ¡Uy! No encontré ninguna cara en la foto. 😅\n📸 ¡Manda una foto clara de tu rostro para poder leer tu personalidad! ✨",
	domain.ErrKindMultipleFaces:     "👥 ¡Vaya! Vi varias caras en la foto. 😊\n👤 Manda una foto solo tuya para poder concentrarme en ti. 💫",
	domain.ErrKindPoorQuality:       "📷 La calidad de la foto es un poco baja. 😔\n✨ Manda una foto más clara y luminosa para analizarte mejor. 📸",
	domain.ErrKindFileTooLarge:      "📊 ¡Tu foto pesa demasiado! 😅\n💾 Manda una imagen de menos de 10 MB. 🔄",
	domain.ErrKindUnsupportedFormat: "🖼️ No reconozco ese formato de imagen. 😊\n📱 Manda tu foto en JPG o PNG. ✅",
	domain.ErrKindAnalysisFailed:    "🔮 ¡Ups! Hubo un pequeño problema. 😅\n🔄 Intenta de nuevo, ¡seguro esta vez funciona! 💪",
	domain.ErrKindProcessingError:   "⚡ Hubo un problema procesando la foto. 😅\n📸 Prueba con otra foto, ¡esta vez lo logramos! 🎯",
}

func errorMessage(kind domain.ErrorKind) string {
	if msg, ok := errorMessages[kind]; ok {
		return msg
	}
	return errorMessages[domain.ErrKindProcessingError]
}

func rateLimitMessage(waitSeconds int) string {
	return fmt.Sprintf("⏰ ¡Tranquilo, vas muy rápido! 😊\n🕐 Espera %d segundos y vuelve a mandar tu foto. ⏳", waitSeconds)
}

func statusMessage(user domain.User, vipActive bool) string {
	if vipActive {
		expires := ""
		if user.VipExpires != nil {
			expires = user.VipExpires.Format("02/01/2006")
		}
		return fmt.Sprintf(`📊 *Tu estado*

👑 Suscripción: *VIP activa*
📅 Vence: %s
🔄 Análisis: ilimitados`, expires)
	}

	free := "disponible 🎁"
	if user.FreeAnalysisUsed {
		free = "usado 🔒"
	}
	return fmt.Sprintf(`📊 *Tu estado*

👤 Suscripción: gratuita
🎁 Análisis gratuito: %s

👑 Con /vip desbloqueas análisis ilimitados.`, free)
}
