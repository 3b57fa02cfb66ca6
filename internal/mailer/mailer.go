package mailer

import "embed"

const (
	FromName                    = "Voyago"
	maxRetries                  = 3
	PaymentConfirmationTemplate = "payment_confirmation.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
