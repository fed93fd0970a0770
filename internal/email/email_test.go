package email

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplateManager_RendersBuiltins(t *testing.T) {
	tm, err := NewDefaultTemplateManager("")
	require.NoError(t, err)

	out, err := tm.Render(TemplateWelcome, TemplateData{
		"Email":        "user@example.com",
		"PlanName":     "Professional",
		"MonthlyLimit": 200,
		"DashboardURL": "http://localhost:3000/dashboard",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Professional")
	assert.Contains(t, out, "200 pieces of content")

	assert.ElementsMatch(t,
		[]string{TemplateWelcome, TemplatePaymentFailed, TemplateSubscriptionCancelled},
		tm.TemplateNames())
}

func TestTemplateManager_EscapesHTML(t *testing.T) {
	tm := NewTemplateManager()
	require.NoError(t, tm.AddTemplate("t", "<p>{{.Name}}</p>"))

	out, err := tm.Render("t", TemplateData{"Name": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;</p>", out)
}

func TestTemplateManager_UnknownTemplate(t *testing.T) {
	_, err := NewTemplateManager().Render("missing", nil)
	assert.Error(t, err)
}

func TestDefaultTemplateManager_DirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "welcome.html"), []byte("custom {{.Email}}"), 0o644))

	tm, err := NewDefaultTemplateManager(dir)
	require.NoError(t, err)

	out, err := tm.Render(TemplateWelcome, TemplateData{"Email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "custom a@b.c", out)
}

func TestSMTPProvider_Validate(t *testing.T) {
	cfg := DefaultConfig()
	p := NewSMTPProvider(cfg, nil)
	assert.Error(t, p.Validate(), "sender is required")

	cfg.FromEmail = "noreply@example.com"
	assert.NoError(t, p.Validate())

	cfg.Port = 0
	assert.Error(t, p.Validate())
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FromEmail = "noreply@example.com"
	p := NewSMTPProvider(cfg, nil)

	m := p.buildMessage(&Email{
		To:       []string{"user@example.com"},
		Subject:  "Payment failed",
		HTMLBody: "<p>hello</p>",
		Attachments: []Attachment{
			{Name: "invoice.txt", Content: []byte("total: 29"), ContentType: "text/plain"},
		},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Payment failed")
	assert.Contains(t, raw, "To: user@example.com")
	assert.Contains(t, raw, "noreply@example.com")
	assert.Contains(t, raw, "invoice.txt")
	assert.True(t, strings.Contains(raw, "text/html"))
}

func TestSMTPProvider_SendWithoutRecipients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FromEmail = "noreply@example.com"

	err := NewSMTPProvider(cfg, nil).Send(&Email{Subject: "x"})
	assert.Error(t, err)
}

func TestLogProvider_RecordsTemplatedEmail(t *testing.T) {
	tm, err := NewDefaultTemplateManager("")
	require.NoError(t, err)
	p := NewLogProvider(tm)

	err = p.SendTemplate([]string{"user@example.com"}, "Cancelled", TemplateSubscriptionCancelled, TemplateData{
		"Email":      "user@example.com",
		"PricingURL": "http://localhost:3000/pricing",
	})
	require.NoError(t, err)

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Cancelled", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, "/pricing")
}
