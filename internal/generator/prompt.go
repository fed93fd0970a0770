package generator

import (
	"fmt"
	"strings"

	"contentgen_backend/internal/models"
	"contentgen_backend/pkg/apperrors"
)

// Request - параметры генерации
type Request struct {
	ContentType    models.ContentType
	Topic          string
	Tone           string
	Length         int
	Keywords       []string
	Industry       string
	TargetAudience string
	EmailPurpose   string
}

// Prompt - текст инструкции и лимит на длину ответа
type Prompt struct {
	Text      string
	MaxTokens int
}

const (
	maxTokensBlog   = 2000
	maxTokensSocial = 800
	maxTokensEmail  = 1000
	maxTokensSEO    = 2500

	defaultEmailPurpose = "general communication"

	// строки шаблона разделяются пробелом, переводом строки и отступом
	lineSep = " \n        "
)

// BuildPrompt собирает инструкцию по шаблону типа контента.
// Неизвестный тип - apperrors.ErrInvalidContentType.
func BuildPrompt(req Request) (Prompt, error) {
	keywords := strings.Join(req.Keywords, ", ")

	switch req.ContentType {
	case models.ContentTypeBlog:
		return Prompt{
			Text: joinLines(
				fmt.Sprintf(`Write a professional blog post about "%s" for the %s industry.`, req.Topic, req.Industry),
				fmt.Sprintf("Target audience: %s.", req.TargetAudience),
				fmt.Sprintf("Tone: %s.", req.Tone),
				fmt.Sprintf("Length: %d words.", req.Length),
				fmt.Sprintf("Include these keywords naturally: %s.", keywords),
				"Structure: Introduction, 3-4 main points with subheadings, conclusion with call-to-action.",
			),
			MaxTokens: maxTokensBlog,
		}, nil

	case models.ContentTypeSocial:
		return Prompt{
			Text: joinLines(
				fmt.Sprintf(`Create %d engaging social media posts about "%s" for %s business.`, req.Length, req.Topic, req.Industry),
				fmt.Sprintf("Tone: %s.", req.Tone),
				"Include hashtags and emojis.",
				fmt.Sprintf("Keywords: %s.", keywords),
				"Make it shareable and engaging.",
			),
			MaxTokens: maxTokensSocial,
		}, nil

	case models.ContentTypeEmail:
		purpose := req.EmailPurpose
		if strings.TrimSpace(purpose) == "" {
			purpose = defaultEmailPurpose
		}
		return Prompt{
			Text: joinLines(
				fmt.Sprintf(`Write a professional email about "%s" for %s business.`, req.Topic, req.Industry),
				fmt.Sprintf("Tone: %s.", req.Tone),
				fmt.Sprintf("Length: %d words.", req.Length),
				fmt.Sprintf("Include these keywords: %s.", keywords),
				fmt.Sprintf("Purpose: %s.", purpose),
			),
			MaxTokens: maxTokensEmail,
		}, nil

	case models.ContentTypeSEO:
		return Prompt{
			Text: joinLines(
				fmt.Sprintf(`Create SEO-optimized content about "%s" for %s business.`, req.Topic, req.Industry),
				fmt.Sprintf("Target keywords: %s.", keywords),
				fmt.Sprintf("Length: %d words.", req.Length),
				"Include meta description, H1, H2 tags, and internal linking suggestions.",
			),
			MaxTokens: maxTokensSEO,
		}, nil
	}

	return Prompt{}, apperrors.ErrInvalidContentType
}

func joinLines(lines ...string) string {
	return strings.Join(lines, lineSep)
}
