package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/backoffice/core/store"
)

// ErrUnsupportedLanguage is returned by Preference.Set for languages without translations.
var ErrUnsupportedLanguage = errors.New("i18n: unsupported language")

// Preference persists the UI language in a store.Store under store.KeyLanguage.
type Preference struct {
	store store.Store
	i18n  *I18n
}

// NewPreference creates a Preference backed by st.
func NewPreference(st store.Store, i *I18n) *Preference {
	return &Preference{store: st, i18n: i}
}

// Get returns the stored language, the default language when unset or unreadable.
func (p *Preference) Get(ctx context.Context) string {
	lang, err := p.store.Get(ctx, store.KeyLanguage)
	if err != nil || lang == "" {
		return p.i18n.DefaultLanguage()
	}
	return lang
}

// Set stores lang, negotiated against the loaded languages so "de-AT" stores "de".
func (p *Preference) Set(ctx context.Context, lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedLanguage)
	}
	if !p.i18n.Supports(lang) {
		match := Negotiate(lang, p.i18n.Languages())
		if !strings.EqualFold(baseOf(match), baseOf(lang)) {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
		}
		lang = match
	}
	if err := p.store.Set(ctx, store.KeyLanguage, lang); err != nil {
		return "", err
	}
	return lang, nil
}

// Translator returns a Translator for the stored language.
func (p *Preference) Translator(ctx context.Context) *Translator {
	return NewTranslator(p.i18n, p.Get(ctx), Namespace)
}

func baseOf(lang string) string {
	base, _, _ := strings.Cut(lang, "-")
	return base
}
