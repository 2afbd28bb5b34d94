package i18n

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLang is used when no default language is configured.
const DefaultLang = "en"

// M holds placeholder values for a translation.
type M map[string]any

// I18n is an immutable set of translations. It is safe for concurrent use.
type I18n struct {
	// key format: "lang:namespace:key.path"
	translations map[string]string
	defaultLang  string
	languages    []string
	tags         map[string]language.Tag

	missingKeyHandler func(lang, namespace, key string)
}

// Option configures the I18n instance during construction.
type Option func(*I18n) error

// New creates an I18n instance from opts.
func New(opts ...Option) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]string),
		defaultLang:  DefaultLang,
		tags:         make(map[string]language.Tag),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if i.defaultLang == "" {
		return nil, fmt.Errorf("default language cannot be empty")
	}
	if err := i.addLanguage(i.defaultLang); err != nil {
		return nil, err
	}

	// Default language first, the rest sorted.
	langs := slices.Sorted(maps.Keys(i.tags))
	i.languages = append([]string{i.defaultLang}, slices.DeleteFunc(langs, func(l string) bool {
		return l == i.defaultLang
	})...)

	return i, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(i *I18n) error {
		if lang == "" {
			return fmt.Errorf("language cannot be empty")
		}
		i.defaultLang = lang
		return nil
	}
}

// WithMissingKeyHandler is called when a key exists in neither the
// requested nor the default language.
func WithMissingKeyHandler(handler func(lang, namespace, key string)) Option {
	return func(i *I18n) error {
		i.missingKeyHandler = handler
		return nil
	}
}

// WithTranslations loads a possibly nested map of translations.
func WithTranslations(lang, namespace string, translations map[string]any) Option {
	return func(i *I18n) error {
		if lang == "" {
			return fmt.Errorf("language cannot be empty")
		}
		if namespace == "" {
			return fmt.Errorf("namespace cannot be empty")
		}
		if err := i.addLanguage(lang); err != nil {
			return err
		}
		for key, value := range flattenTranslations(translations, "") {
			i.translations[buildKey(lang, namespace, key)] = value
		}
		return nil
	}
}

// WithYAML loads a YAML document of nested translations.
func WithYAML(lang, namespace string, data []byte) Option {
	return func(i *I18n) error {
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("parse %s translations: %w", lang, err)
		}
		return WithTranslations(lang, namespace, tree)(i)
	}
}

func (i *I18n) addLanguage(lang string) error {
	if _, ok := i.tags[lang]; ok {
		return nil
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", lang, err)
	}
	i.tags[lang] = tag
	return nil
}

// T returns the translation of key, falling back to the default language
// and finally to the key itself. Placeholders look like %{name}.
func (i *I18n) T(lang, namespace, key string, placeholders ...M) string {
	if translation, ok := i.lookup(lang, namespace, key); ok {
		return replacePlaceholdersWithMerge(translation, placeholders...)
	}
	if i.missingKeyHandler != nil {
		i.missingKeyHandler(lang, namespace, key)
	}
	return key
}

// Tn returns the plural form of key matching n. Forms are stored as
// sub-keys named after the CLDR categories (zero, one, two, few, many,
// other); "other" is the fallback. n is available as %{count}.
func (i *I18n) Tn(lang, namespace, key string, n int, placeholders ...M) string {
	merged := M{"count": n}
	for _, p := range placeholders {
		maps.Copy(merged, p)
	}

	for _, form := range []string{i.pluralForm(lang, n), PluralOther} {
		if translation, ok := i.lookup(lang, namespace, key+"."+form); ok {
			return ReplacePlaceholders(translation, merged)
		}
	}
	if i.missingKeyHandler != nil {
		i.missingKeyHandler(lang, namespace, key)
	}
	return key
}

func (i *I18n) lookup(lang, namespace, key string) (string, bool) {
	if translation, ok := i.translations[buildKey(lang, namespace, key)]; ok {
		return translation, true
	}
	if lang != i.defaultLang {
		translation, ok := i.translations[buildKey(i.defaultLang, namespace, key)]
		return translation, ok
	}
	return "", false
}

// Languages returns the loaded languages, default first.
func (i *I18n) Languages() []string {
	return i.languages
}

// DefaultLanguage returns the fallback language.
func (i *I18n) DefaultLanguage() string {
	return i.defaultLang
}

// Supports reports whether lang has been loaded.
func (i *I18n) Supports(lang string) bool {
	_, ok := i.tags[lang]
	return ok
}

func buildKey(lang, namespace, key string) string {
	return lang + ":" + namespace + ":" + key
}

// flattenTranslations flattens nested maps into dot-notation keys.
func flattenTranslations(data map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch v := value.(type) {
		case string:
			result[fullKey] = v
		case map[string]any:
			maps.Copy(result, flattenTranslations(v, fullKey))
		case map[string]string:
			for subKey, subVal := range v {
				result[fullKey+"."+subKey] = subVal
			}
		case nil:
		default:
			result[fullKey] = fmt.Sprintf("%v", v)
		}
	}

	return result
}
