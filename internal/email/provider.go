package email

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет готовое сообщение
	Send(email *Email) error

	// SendTemplate рендерит шаблон и отправляет его на адреса to
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	Validate() error
	Close() error
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
	LoadTemplates(dirPath string) error
}

// Email - исходящее письмо. Отправитель берется из SMTPConfig.
type Email struct {
	To          []string
	ReplyTo     string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

type Attachment struct {
	Name        string
	Content     []byte
	ContentType string
}

// TemplateData - переменные шаблона письма
type TemplateData map[string]interface{}
