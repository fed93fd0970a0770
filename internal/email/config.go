package email

import "time"

// SMTPConfig содержит конфигурацию SMTP сервера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:     "localhost",
		Port:     587,
		FromName: "ContentGen",
		Timeout:  30 * time.Second,
	}
}

// Enabled - SMTP настроен, письма можно отправлять
func (c *SMTPConfig) Enabled() bool {
	return c != nil && c.Host != "" && c.FromEmail != ""
}
