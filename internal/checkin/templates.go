package checkin

import (
	"fmt"

	"legado/internal/common"
)

// promptEmail builds the re-confirmation message in the profile's
// language. Only en and es are supported; anything else falls back to
// English.
func promptEmail(locale common.Locale, handle, link string, attempts int) (subject, body string) {
	if locale == common.LocaleSpanish {
		subject = "Confirma que estás bien"
		body = fmt.Sprintf(
			"Hola %s,\n\nNo hemos recibido tu confirmación periódica (intento %d). "+
				"Si no confirmas, tus mensajes programados serán entregados a tus contactos de confianza.\n\n"+
				"Confirma aquí: %s\n",
			handle, attempts, link)
		return subject, body
	}

	subject = "Please confirm you are okay"
	body = fmt.Sprintf(
		"Hi %s,\n\nWe have not received your periodic check-in (attempt %d). "+
			"If you do not confirm, your scheduled messages will be delivered to your trusted contacts.\n\n"+
			"Confirm here: %s\n",
		handle, attempts, link)
	return subject, body
}
