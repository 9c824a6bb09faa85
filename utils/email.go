package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func loadEmailConfig() EmailConfig {
	port := 587 // Default SMTP port
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendPaymentConfirmation emails the user after a payment settles
func SendPaymentConfirmation(to, username, orderID, metalType string, amount, weightInGrams float64) error {
	config := loadEmailConfig()
	if config.Host == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your BloomVest purchase is confirmed")

	body := fmt.Sprintf(`
		<h2>Payment Confirmed</h2>
		<p>Hi %s,</p>
		<p>Your payment has been received and your investment has been credited.</p>
		<ul>
			<li>Order ID: <b>%s</b></li>
			<li>Metal: <b>%s</b></li>
			<li>Amount: <b>&#8377;%.2f</b></li>
			<li>Weight credited: <b>%.4f g</b></li>
		</ul>
		<p>You can view your holdings any time in the app.</p>
	`, username, orderID, metalType, amount, weightInGrams)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
