package i18n

// Translator is an I18n bound to one language and namespace, the form
// commands and views hold on to.
type Translator struct {
	i18n *I18n
	lang string
	ns   string
}

// NewTranslator binds i to lang and namespace. An empty lang selects the
// default language. It panics on a nil i.
func NewTranslator(i *I18n, lang, namespace string) *Translator {
	if i == nil {
		panic("i18n: nil I18n")
	}
	if lang == "" {
		lang = i.DefaultLanguage()
	}
	return &Translator{i18n: i, lang: lang, ns: namespace}
}

func (t *Translator) T(key string, placeholders ...M) string {
	return t.i18n.T(t.lang, t.ns, key, placeholders...)
}

func (t *Translator) Tn(key string, n int, placeholders ...M) string {
	return t.i18n.Tn(t.lang, t.ns, key, n, placeholders...)
}

// LogoutMessage translates a stored logout reason.
func (t *Translator) LogoutMessage(reason string) string {
	return t.T(LogoutMessageKey(reason))
}

func (t *Translator) Language() string  { return t.lang }
func (t *Translator) Namespace() string { return t.ns }
