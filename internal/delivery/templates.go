package delivery

import (
	"fmt"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

// recipientEmail renders the delivery notice for a direct recipient in
// the author's language. Text messages carry the body inline; audio and
// video messages carry a pointer the web app resolves to the media.
func recipientEmail(locale common.Locale, name, authorHandle string, msg *dbmysql.Message) (subject, body string) {
	if locale == common.LocaleSpanish {
		subject = fmt.Sprintf("Un mensaje de %s", authorHandle)
		body = fmt.Sprintf("Hola %s,\n\n%s dejó este mensaje para ti.\n\n%s\n", name, authorHandle, renderPayload(locale, msg))
		return subject, body
	}

	subject = fmt.Sprintf("A message from %s", authorHandle)
	body = fmt.Sprintf("Hi %s,\n\n%s left this message for you.\n\n%s\n", name, authorHandle, renderPayload(locale, msg))
	return subject, body
}

// trustedContactEmail renders the absence notice sent to the user's
// trusted contacts when the check-in path fires.
func trustedContactEmail(locale common.Locale, name, authorHandle string) (subject, body string) {
	if locale == common.LocaleSpanish {
		subject = fmt.Sprintf("Aviso sobre %s", authorHandle)
		body = fmt.Sprintf(
			"Hola %s,\n\n%s te designó como contacto de confianza. "+
				"No ha confirmado sus chequeos periódicos y sus mensajes programados han sido entregados.\n",
			name, authorHandle)
		return subject, body
	}

	subject = fmt.Sprintf("Notice regarding %s", authorHandle)
	body = fmt.Sprintf(
		"Hi %s,\n\n%s designated you as a trusted contact. "+
			"They have not confirmed their periodic check-ins and their scheduled messages have been delivered.\n",
		name, authorHandle)
	return subject, body
}

func renderPayload(locale common.Locale, msg *dbmysql.Message) string {
	switch common.MessageType(msg.Type) {
	case common.MessageTypeText:
		return msg.Body
	default:
		mediaID := ""
		if msg.MediaID != nil {
			mediaID = *msg.MediaID
		}
		if locale == common.LocaleSpanish {
			return fmt.Sprintf("Mensaje de %s adjunto: /media/%s", msg.Type, mediaID)
		}
		return fmt.Sprintf("Attached %s message: /media/%s", msg.Type, mediaID)
	}
}
