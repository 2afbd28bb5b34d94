// Package i18n translates the messages of the back-office client.
//
// Translations are immutable after construction and safe for concurrent use.
// Nested maps and YAML documents are flattened into dot-notation keys, so
// lookups are a single map access. Missing keys fall back to the default
// language and finally to the key itself.
//
// # Basic Usage
//
// The client ships English and German bundles:
//
//	tr, err := i18n.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(tr.T("de", i18n.Namespace, i18n.KeyLogoutReconnect))
//
// Additional bundles can be layered on top:
//
//	tr, err := i18n.Default(i18n.Bundles(os.DirFS("./locales")))
//
// # Pluralization
//
// Plural forms are sub-keys named after the CLDR categories. The category
// for a count comes from golang.org/x/text/feature/plural; "other" is the
// fallback form:
//
//	notify:
//	  badge:
//	    orders:
//	      one: "%{count} new order"
//	      other: "%{count} new orders"
//
//	tr.Tn("en", i18n.Namespace, "notify.badge.orders", 3) // "3 new orders"
//
// # Language Selection
//
// Negotiate matches an Accept-Language style header against the loaded
// languages with golang.org/x/text/language. Preference persists the user's
// choice in the session store; the HTTP transport reads it back for the
// Accept-Language header of every API call:
//
//	pref := i18n.NewPreference(st, tr)
//	lang, err := pref.Set(ctx, "de-AT") // stores "de"
//
// # Placeholders
//
// Placeholders use the %{name} form and are replaced from i18n.M maps.
package i18n
