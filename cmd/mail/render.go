package main

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

type mailKind struct {
	template string
	subject  string
}

var mailKinds = map[string]mailKind{
	domain.MailTypeCreateUser:      {"new_account_email.html", "Gestor de cultos - Datos de tu cuenta"},
	domain.MailTypeResetPassword:   {"reset_password_otp_email.html", "Gestor de cultos - Restablecer contraseña"},
	domain.MailTypeChangeEmail:     {"change_email_email.html", "Gestor de cultos - Cambio de correo"},
	domain.MailTypeReadingAssigned: {"reading_assigned_email.html", "Gestor de cultos - Lectura asignada"},
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// buildMsg monta el correo de un mensaje de la cola. Un error aquí no se arregla reintentando.
func buildMsg(from string, m domain.MailMessage) (*mail.Msg, error) {
	kind, ok := mailKinds[m.Type]
	if !ok {
		return nil, fmt.Errorf("tipo de correo no soportado: %q", m.Type)
	}

	tmpl := templates.Lookup(kind.template)
	if tmpl == nil {
		return nil, fmt.Errorf("no existe la plantilla %s", kind.template)
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("remitente: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("destinatario: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, m.Data); err != nil {
		return nil, fmt.Errorf("cuerpo: %w", err)
	}
	msg.Subject(kind.subject)

	return msg, nil
}
