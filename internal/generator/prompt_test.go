package generator

import (
	"testing"

	"contentgen_backend/internal/models"
	"contentgen_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest(ct models.ContentType) Request {
	return Request{
		ContentType:    ct,
		Topic:          "Remote work",
		Tone:           "friendly",
		Length:         800,
		Keywords:       []string{"productivity", "teams"},
		Industry:       "technology",
		TargetAudience: "managers",
	}
}

func TestBuildPrompt_Blog(t *testing.T) {
	p, err := BuildPrompt(baseRequest(models.ContentTypeBlog))
	require.NoError(t, err)

	expected := "Write a professional blog post about \"Remote work\" for the technology industry. \n" +
		"        Target audience: managers. \n" +
		"        Tone: friendly. \n" +
		"        Length: 800 words. \n" +
		"        Include these keywords naturally: productivity, teams. \n" +
		"        Structure: Introduction, 3-4 main points with subheadings, conclusion with call-to-action."
	assert.Equal(t, expected, p.Text)
	assert.Equal(t, 2000, p.MaxTokens)
}

func TestBuildPrompt_SocialUsesLengthAsPostCount(t *testing.T) {
	req := baseRequest(models.ContentTypeSocial)
	req.Length = 5
	p, err := BuildPrompt(req)
	require.NoError(t, err)

	expected := "Create 5 engaging social media posts about \"Remote work\" for technology business. \n" +
		"        Tone: friendly. \n" +
		"        Include hashtags and emojis. \n" +
		"        Keywords: productivity, teams. \n" +
		"        Make it shareable and engaging."
	assert.Equal(t, expected, p.Text)
	assert.Equal(t, 800, p.MaxTokens)
}

func TestBuildPrompt_EmailDefaultsPurpose(t *testing.T) {
	p, err := BuildPrompt(baseRequest(models.ContentTypeEmail))
	require.NoError(t, err)
	assert.Equal(t, 1000, p.MaxTokens)
	assert.Contains(t, p.Text, "Purpose: general communication.")

	req := baseRequest(models.ContentTypeEmail)
	req.EmailPurpose = "product launch"
	p, err = BuildPrompt(req)
	require.NoError(t, err)

	expected := "Write a professional email about \"Remote work\" for technology business. \n" +
		"        Tone: friendly. \n" +
		"        Length: 800 words. \n" +
		"        Include these keywords: productivity, teams. \n" +
		"        Purpose: product launch."
	assert.Equal(t, expected, p.Text)
}

func TestBuildPrompt_SEO(t *testing.T) {
	p, err := BuildPrompt(baseRequest(models.ContentTypeSEO))
	require.NoError(t, err)

	expected := "Create SEO-optimized content about \"Remote work\" for technology business. \n" +
		"        Target keywords: productivity, teams. \n" +
		"        Length: 800 words. \n" +
		"        Include meta description, H1, H2 tags, and internal linking suggestions."
	assert.Equal(t, expected, p.Text)
	assert.Equal(t, 2500, p.MaxTokens)
}

func TestBuildPrompt_UnknownType(t *testing.T) {
	_, err := BuildPrompt(baseRequest("invoice"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidContentType)
}
