package subtitle

import (
	"testing"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguages(t *testing.T) {
	cfg := config.SubtitlesConfig{
		DefaultLanguage: "ar",
		Languages: []config.LanguageConfig{
			{Code: "ar"},
			{Code: "en"},
			{Code: "not a tag!"},
		},
	}

	langs := Languages(cfg)
	require.Len(t, langs, 2)

	assert.Equal(t, "ar", langs[0].Code)
	assert.Equal(t, "Arabic", langs[0].Name)
	assert.NotEmpty(t, langs[0].NativeName)
	assert.True(t, langs[0].Default)

	assert.Equal(t, "English", langs[1].Name)
	assert.False(t, langs[1].Default)
}

func TestNormalize(t *testing.T) {
	code, err := Normalize("en-US")
	require.NoError(t, err)
	assert.Equal(t, "en", code)

	_, err = Normalize("###")
	assert.Error(t, err)
}
