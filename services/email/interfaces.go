package email

import "storefront-api/models"

type EmailSender interface {
	SendEmail(to, subject, body string) error
	SendOrderConfirmation(summary models.OrderSummary) error
}
