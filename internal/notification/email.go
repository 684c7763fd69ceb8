package notification

import (
	"fmt"

	"github.com/Oluwaseg/shuriken-store-sub000/internal/config"
	"github.com/Oluwaseg/shuriken-store-sub000/internal/domain/model"

	"gopkg.in/gomail.v2"
)

// 決済確定後の確認通知。失敗しても注文はロールバックしない
type Mailer interface {
	SendOrderConfirmation(toEmail string, order model.Order) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.Config) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.SMTPFrom,
	}, nil
}

func (s *SMTPMailer) SendOrderConfirmation(toEmail string, order model.Order) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #ORD-%d - Shuriken Store", order.ID))

	body := fmt.Sprintf(`
<html>
<body>
    <h2>Thank you for your order!</h2>
    <p>Your payment was confirmed and order <strong>ORD-%d</strong> is now being prepared.</p>
    <p>Total: &#8358;%d (items %d + tax %d + shipping %d)</p>
    <p>Shipping to: %s, %s, %s, %s %s</p>
    <p>This is an automated email. Please do not reply.</p>
</body>
</html>
	`, order.ID,
		order.TotalPrice, order.ItemsPrice, order.TaxPrice, order.ShippingPrice,
		order.ShippingInfo.Address, order.ShippingInfo.City, order.ShippingInfo.State,
		order.ShippingInfo.Country, order.ShippingInfo.PostalCode)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
