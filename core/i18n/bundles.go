package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Namespace holds the back-office client messages.
const Namespace = "backoffice"

// Message keys shown by the client.
const (
	KeyLogoutReconnect    = "auth.logout.reconnect"
	KeyLogoutExpired      = "auth.logout.expired"
	KeyInvalidCredentials = "auth.login.invalid_credentials"
	KeyUnreachable        = "auth.login.unreachable"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Bundles loads every <lang>.yaml file in fsys into Namespace.
func Bundles(fsys fs.FS) Option {
	return func(i *I18n) error {
		files, err := fs.Glob(fsys, "*.yaml")
		if err != nil {
			return err
		}
		for _, name := range files {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			lang := strings.TrimSuffix(path.Base(name), ".yaml")
			if err := WithYAML(lang, Namespace, data)(i); err != nil {
				return err
			}
		}
		return nil
	}
}

// Default returns the built-in English and German messages. Extra options
// are applied after the built-in bundles, so they can add or override keys.
func Default(opts ...Option) (*I18n, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return New(append([]Option{Bundles(sub)}, opts...)...)
}

// LogoutMessageKey maps a stored logout reason to its message key.
func LogoutMessageKey(reason string) string {
	return "auth.logout." + reason
}
