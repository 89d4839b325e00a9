// Package notify emails customers about their orders.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/gunalchandran/grocery-backend/events"
	"github.com/gunalchandran/grocery-backend/models"
)

// Sender delivers a plain-text email.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through an SMTP server with STARTTLS.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, address, password string) *SMTPSender {
	return &SMTPSender{
		from:   address,
		dialer: gomail.NewDialer(host, port, address, password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// LogSender only logs. It stands in when SMTP is not configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, to, subject, _ string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Email not sent, SMTP disabled", "to", to, "subject", subject)
	return nil
}

const deliveredSubject = "Your Order Has Been Delivered"

// DeliveredEmail returns the subject and body sent when an order is
// delivered.
func DeliveredEmail(name string) (subject, body string) {
	if name == "" {
		name = "Customer"
	}
	body = fmt.Sprintf("Dear %s,\n\nYour order has been successfully delivered. "+
		"Thank you for shopping with us!\n\nBest regards,\nGrocery Store Team", name)
	return deliveredSubject, body
}

// DeliveryNotifier emails the customer when an order's status update
// reaches Delivered.
type DeliveryNotifier struct {
	sender Sender
	logger *slog.Logger
}

func NewDeliveryNotifier(sender Sender, logger *slog.Logger) *DeliveryNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeliveryNotifier{sender: sender, logger: logger}
}

// Handle is an events.Handler.
func (n *DeliveryNotifier) Handle(ctx context.Context, ev events.OrderEvent) error {
	if ev.Type != events.OrderStatusUpdated || ev.DeliveryStatus != models.DeliveryDelivered {
		return nil
	}
	if ev.Email == "" {
		n.logger.Warn("Delivered order has no email", "order_id", ev.OrderID)
		return nil
	}
	subject, body := DeliveredEmail(ev.Name)
	if err := n.sender.Send(ctx, ev.Email, subject, body); err != nil {
		return err
	}
	n.logger.Info("Email sent", "to", ev.Email, "order_id", ev.OrderID)
	return nil
}
