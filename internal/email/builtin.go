package email

import (
	"embed"
	"io/fs"
)

// Имена встроенных шаблонов
const (
	TemplateWelcome               = "welcome"
	TemplatePaymentFailed         = "payment_failed"
	TemplateSubscriptionCancelled = "subscription_cancelled"
)

//go:embed templates/*.html
var builtinFS embed.FS

// NewDefaultTemplateManager - менеджер со встроенными шаблонами.
// Файлы из dir (если задан) переопределяют встроенные по имени.
func NewDefaultTemplateManager(dir string) (*TemplateManager, error) {
	tm := NewTemplateManager()

	builtin, err := fs.Sub(builtinFS, "templates")
	if err != nil {
		return nil, err
	}
	if err := tm.LoadFS(builtin); err != nil {
		return nil, err
	}

	if dir != "" {
		if err := tm.LoadTemplates(dir); err != nil {
			return nil, err
		}
	}
	return tm, nil
}
