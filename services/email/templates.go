package email

import (
	"bytes"
	"fmt"
	"html/template"

	"storefront-api/models"
	"storefront-api/utils"
)

func OrderConfirmationSubject(summary models.OrderSummary) string {
	return fmt.Sprintf("Your order %s is confirmed", summary.OrderNumber)
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Funcs(template.FuncMap{
	"usd":       utils.FormatUSD,
	"describe":  models.DescribeCustomization,
	"lineTotal": func(i models.CartItem) float64 { return utils.Round(i.LineTotal()) },
	"date":      func(s models.OrderSummary) string { return s.PlacedAt.Format("January 2, 2006") },
}).Parse(orderConfirmationHTML))

// RenderOrderConfirmation renders the HTML body of the confirmation email. Customer input is escaped.
func RenderOrderConfirmation(summary models.OrderSummary) (string, error) {
	var buf bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&buf, summary); err != nil {
		return "", fmt.Errorf("failed to render order confirmation: %w", err)
	}
	return buf.String(), nil
}

const orderConfirmationHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Order {{.OrderNumber}}</title>
</head>
<body style="margin: 0; padding: 0; background-color: #f9fafb; font-family: Arial, sans-serif;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color: #f9fafb;">
        <tr>
            <td align="center" style="padding: 40px 20px;">
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="max-width: 600px; background-color: #ffffff; border-radius: 12px; overflow: hidden;">

                    <!-- Header -->
                    <tr>
                        <td style="background-color: #1f2937; padding: 32px 20px; text-align: center;">
                            <h1 style="color: #ffffff; font-size: 24px; margin: 0;">Thanks for your order, {{.Customer.FirstName}}!</h1>
                            <p style="color: #d1d5db; font-size: 14px; margin: 8px 0 0 0;">Order {{.OrderNumber}} placed on {{date .}}</p>
                        </td>
                    </tr>

                    <!-- Items -->
                    <tr>
                        <td style="padding: 32px 40px;">
                            <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%">
                                {{- range .Items}}
                                <tr>
                                    <td style="padding: 8px 0; border-bottom: 1px solid #e5e7eb;">
                                        <p style="color: #111827; font-size: 16px; margin: 0;">{{.Name}} &times; {{.Quantity}}</p>
                                        {{- with describe .Customization}}
                                        <p style="color: #6b7280; font-size: 13px; margin: 4px 0 0 0;">{{.}}</p>
                                        {{- end}}
                                    </td>
                                    <td style="padding: 8px 0; border-bottom: 1px solid #e5e7eb; text-align: right; color: #111827;">{{usd (lineTotal .)}}</td>
                                </tr>
                                {{- end}}
                            </table>
                        </td>
                    </tr>

                    <!-- Totals -->
                    <tr>
                        <td style="padding: 0 40px 32px 40px;">
                            <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="color: #374151; font-size: 14px;">
                                <tr><td>Subtotal</td><td style="text-align: right;">{{usd .Totals.Subtotal}}</td></tr>
                                <tr><td>Tax</td><td style="text-align: right;">{{usd .Totals.Tax}}</td></tr>
                                <tr><td>Shipping</td><td style="text-align: right;">{{if eq .Totals.Shipping 0.0}}Free{{else}}{{usd .Totals.Shipping}}{{end}}</td></tr>
                                <tr><td style="font-weight: 700; padding-top: 8px;">Total</td><td style="font-weight: 700; padding-top: 8px; text-align: right;">{{usd .Totals.Total}}</td></tr>
                            </table>
                        </td>
                    </tr>

                    <!-- Shipping and payment -->
                    <tr>
                        <td style="padding: 24px 40px; border-top: 1px solid #e5e7eb; color: #374151; font-size: 14px; line-height: 1.6;">
                            <p style="margin: 0 0 4px 0; font-weight: 600;">Shipping to</p>
                            <p style="margin: 0;">{{.Customer.FirstName}} {{.Customer.LastName}}<br>
                            {{.Shipping.Address}}<br>
                            {{.Shipping.City}}, {{.Shipping.State}} {{.Shipping.ZipCode}}<br>
                            {{.Shipping.Country}}</p>
                            <p style="margin: 16px 0 4px 0; font-weight: 600;">Paid with</p>
                            <p style="margin: 0;">{{.MaskedCard}}</p>
                        </td>
                    </tr>

                </table>
            </td>
        </tr>
    </table>
</body>
</html>`
