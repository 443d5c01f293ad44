package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/shopora/internal/config"
	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// OrderConfirmEmailInput 下单确认邮件输入
type OrderConfirmEmailInput struct {
	OrderNo     string
	TotalAmount models.Money
	Currency    string
	ItemCount   int
}

// SendOrderConfirmEmail 发送下单确认邮件
func (s *EmailService) SendOrderConfirmEmail(toEmail string, input OrderConfirmEmailInput) error {
	subject, body := buildOrderConfirmContent(input)
	return s.sendTextEmail(toEmail, subject, body)
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo     string
	Status      string
	TotalAmount models.Money
	Currency    string
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput) error {
	subject, body := buildOrderStatusContent(input)
	return s.sendTextEmail(toEmail, subject, body)
}

// RefundStatusEmailInput 退款状态邮件输入
type RefundStatusEmailInput struct {
	RefundNo        string
	OrderNo         string
	Status          string
	Amount          models.Money
	Currency        string
	RejectionReason string
}

// SendRefundStatusEmail 发送退款状态通知
func (s *EmailService) SendRefundStatusEmail(toEmail string, input RefundStatusEmailInput) error {
	subject, body := buildRefundStatusContent(input)
	return s.sendTextEmail(toEmail, subject, body)
}

// DiscountEmailInput 商品降价通知输入
type DiscountEmailInput struct {
	ProductTitle    string
	OldPrice        string
	NewPrice        string
	DiscountPercent int
}

// SendDiscountEmail 发送商品降价通知
func (s *EmailService) SendDiscountEmail(toEmail string, input DiscountEmailInput) error {
	subject, body := buildDiscountContent(input)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP configuration test"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "This is a test email. Your SMTP configuration is working."
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildOrderConfirmContent(input OrderConfirmEmailInput) (string, string) {
	subject := fmt.Sprintf("Order confirmed: %s", input.OrderNo)
	body := fmt.Sprintf(
		"Thanks for your purchase.\n\nOrder No: %s\nItems: %d\nTotal: %s %s\n\nWe will email you again when your items ship.",
		input.OrderNo, input.ItemCount, input.TotalAmount.String(), strings.TrimSpace(input.Currency))
	return subject, body
}

func buildOrderStatusContent(input OrderStatusEmailInput) (string, string) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	label := orderStatusLabel(status)
	subject := fmt.Sprintf("Order status updated: %s", label)
	amount := input.TotalAmount.String()
	currency := strings.TrimSpace(input.Currency)
	switch status {
	case constants.OrderStatusInTransit:
		return subject, fmt.Sprintf("Your order is on the way.\n\nOrder No: %s\nStatus: %s\nTotal: %s %s", input.OrderNo, label, amount, currency)
	case constants.OrderStatusDelivered:
		return subject, fmt.Sprintf("Delivery completed.\n\nOrder No: %s\nStatus: %s\nTotal: %s %s", input.OrderNo, label, amount, currency)
	case constants.OrderStatusCancelled:
		return subject, fmt.Sprintf("The order has been cancelled.\n\nOrder No: %s\nStatus: %s\nTotal: %s %s", input.OrderNo, label, amount, currency)
	default:
		return subject, fmt.Sprintf("Your order status changed.\n\nOrder No: %s\nStatus: %s\nTotal: %s %s", input.OrderNo, label, amount, currency)
	}
}

func buildRefundStatusContent(input RefundStatusEmailInput) (string, string) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	label := refundStatusLabel(status)
	subject := fmt.Sprintf("Refund %s: %s", label, input.RefundNo)
	amount := input.Amount.String()
	currency := strings.TrimSpace(input.Currency)
	switch status {
	case constants.RefundStatusApproved:
		return subject, fmt.Sprintf("Your refund request has been approved.\n\nRefund No: %s\nOrder No: %s\nAmount: %s %s", input.RefundNo, input.OrderNo, amount, currency)
	case constants.RefundStatusRejected:
		body := fmt.Sprintf("Your refund request has been rejected.\n\nRefund No: %s\nOrder No: %s\nAmount: %s %s", input.RefundNo, input.OrderNo, amount, currency)
		if reason := strings.TrimSpace(input.RejectionReason); reason != "" {
			body += fmt.Sprintf("\nReason: %s", reason)
		}
		return subject, body
	case constants.RefundStatusProcessed:
		return subject, fmt.Sprintf("Your refund has been processed.\n\nRefund No: %s\nOrder No: %s\nAmount: %s %s\n\nThe amount will appear on your statement within a few business days.", input.RefundNo, input.OrderNo, amount, currency)
	default:
		return subject, fmt.Sprintf("Your refund request was received.\n\nRefund No: %s\nOrder No: %s\nAmount: %s %s", input.RefundNo, input.OrderNo, amount, currency)
	}
}

func buildDiscountContent(input DiscountEmailInput) (string, string) {
	subject := fmt.Sprintf("Price drop: %s is now %d%% off", input.ProductTitle, input.DiscountPercent)
	body := fmt.Sprintf(
		"Good news. An item on your wishlist just got cheaper.\n\nProduct: %s\nWas: %s\nNow: %s (%d%% off)",
		input.ProductTitle, input.OldPrice, input.NewPrice, input.DiscountPercent)
	return subject, body
}

func orderStatusLabel(status string) string {
	switch status {
	case constants.OrderStatusProcessing:
		return "Processing"
	case constants.OrderStatusInTransit:
		return "In transit"
	case constants.OrderStatusDelivered:
		return "Delivered"
	case constants.OrderStatusCancelled:
		return "Cancelled"
	default:
		return status
	}
}

func refundStatusLabel(status string) string {
	switch status {
	case constants.RefundStatusPending:
		return "received"
	case constants.RefundStatusApproved:
		return "approved"
	case constants.RefundStatusRejected:
		return "rejected"
	case constants.RefundStatusProcessed:
		return "processed"
	default:
		return status
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
