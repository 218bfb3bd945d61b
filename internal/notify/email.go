package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends the order confirmation mail.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, data ConfirmationData) error
}

type ConfirmationData struct {
	CustomerName string
	OrderRef     string
	Lines        []ConfirmationLine
	TotalCents   int
	LocationName string
}

type ConfirmationLine struct {
	Name       string
	Quantity   int
	PriceCents int
}

func (d ConfirmationData) Total() string { return formatCents(d.TotalCents) }

func (l ConfirmationLine) Subtotal() string { return formatCents(l.Quantity * l.PriceCents) }

func formatCents(c int) string { return fmt.Sprintf("%d.%02d $", c/100, c%100) }

// SMTPSender delivers the confirmation over plain SMTP.
type SMTPSender struct {
	Addr string // host:port
	Host string // for AUTH
	User string
	Pass string
	From string
}

func (s *SMTPSender) SendOrderConfirmation(ctx context.Context, to string, data ConfirmationData) error {
	html, err := RenderConfirmation(data)
	if err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = s.From
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Commande confirmée — %s", data.OrderRef)
	e.HTML = html
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	if err := e.Send(s.Addr, auth); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	return nil
}

// RenderConfirmation builds the HTML body of the confirmation mail.
func RenderConfirmation(data ConfirmationData) ([]byte, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("notify: render confirmation: %w", err)
	}
	return buf.Bytes(), nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Confirmation de commande</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #e10600; color: white; padding: 20px; text-align: center; }
    .content { padding: 30px; background-color: #f9f9f9; }
    table { width: 100%; border-collapse: collapse; }
    td, th { padding: 8px; border-bottom: 1px solid #ddd; text-align: left; }
    .total { font-weight: bold; }
    .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Merci {{.CustomerName}} !</h1>
    </div>
    <div class="content">
      <p>Votre commande <strong>{{.OrderRef}}</strong> est confirmée.</p>
      <table>
        <tr><th>Article</th><th>Qté</th><th>Sous-total</th></tr>
        {{range .Lines}}
        <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Subtotal}}</td></tr>
        {{end}}
        <tr class="total"><td>Total</td><td></td><td>{{.Total}}</td></tr>
      </table>
      {{if .LocationName}}<p>Point de collecte : <strong>{{.LocationName}}</strong></p>{{end}}
      <p>Présentez ce courriel au comptoir lors de la collecte.</p>
    </div>
    <div class="footer">Grand Prix — commandes en ligne</div>
  </div>
</body>
</html>
`))
