package subtitle

import (
	"fmt"

	"github.com/glefebvre/cinevo/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one option of the subtitle language selector
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Default    bool   `json:"default"`
}

// Languages resolves the configured subtitle languages into display names.
// Names are rendered in English and in the language itself. Codes that are
// not valid BCP 47 tags are skipped.
func Languages(cfg config.SubtitlesConfig) []Language {
	english := display.Languages(language.English)

	out := make([]Language, 0, len(cfg.Languages))
	for _, l := range cfg.Languages {
		tag, err := language.Parse(l.Code)
		if err != nil {
			continue
		}
		out = append(out, Language{
			Code:       l.Code,
			Name:       english.Name(tag),
			NativeName: display.Self.Name(tag),
			Default:    l.Default || l.Code == cfg.DefaultLanguage,
		})
	}
	return out
}

// Normalize validates a language code and returns its canonical base form,
// e.g. "en-US" becomes "en".
func Normalize(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
