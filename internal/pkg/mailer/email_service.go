// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentReceipt(toEmail, reference string, amountCents int64, currency string) error
	SendPaymentFailed(toEmail, reference, reason string) error
	SendDunningNotice(toEmail, planName string, attempt int) error
	SendSubscriptionExpired(toEmail, planName string) error
	SendRefundConfirmation(toEmail, reference string, amountCents int64, currency string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func formatAmount(amountCents int64, currency string) string {
	return fmt.Sprintf("%s %.2f", currency, float64(amountCents)/100)
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	return nil
}

func (s *emailService) SendPaymentReceipt(toEmail, reference string, amountCents int64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p>We received your payment of <strong>%s</strong>.</p>
			<p>Order reference: %s</p>
		</div>
	`, formatAmount(amountCents, currency), reference)

	return s.send(toEmail, "Payment Receipt", body)
}

func (s *emailService) SendPaymentFailed(toEmail, reference, reason string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment failed</h2>
			<p>Your payment for order %s could not be completed.</p>
			<p>%s</p>
			<p>Please try again or use a different payment method.</p>
		</div>
	`, reference, reason)

	return s.send(toEmail, "Payment Failed", body)
}

func (s *emailService) SendDunningNotice(toEmail, planName string, attempt int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Action needed on your subscription</h2>
			<p>We could not charge your card for the <strong>%s</strong> plan (attempt %d).</p>
			<p>Please update your payment method to keep your subscription active.</p>
		</div>
	`, planName, attempt)

	return s.send(toEmail, "Subscription Payment Problem", body)
}

func (s *emailService) SendSubscriptionExpired(toEmail, planName string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription expired</h2>
			<p>Your <strong>%s</strong> subscription has expired after repeated failed charges.</p>
			<p>You can subscribe again at any time.</p>
		</div>
	`, planName)

	return s.send(toEmail, "Subscription Expired", body)
}

func (s *emailService) SendRefundConfirmation(toEmail, reference string, amountCents int64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Refund processed</h2>
			<p>A refund of <strong>%s</strong> for order %s has been processed.</p>
			<p>It may take a few business days to reach your account.</p>
		</div>
	`, formatAmount(amountCents, currency), reference)

	return s.send(toEmail, "Refund Confirmation", body)
}
