package jsonschema

import (
	"embed"

	"github.com/kaptinlin/go-i18n"

	"github.com/brightloom/jsonschema/kind"
)

//go:embed locales/*.json
var localesFS embed.FS

// I18n returns an initialized internationalization bundle with the
// embedded locale catalogs. Callers derive a *i18n.Localizer from it with
// Bundle.NewLocalizer(locale) and pass that to ValidationError.Localize.
func I18n() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	if err := bundle.LoadFS(localesFS, "locales/*.json"); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Localize returns a translated one-line summary of this error's own
// keyword failure (not its Causes) using the given localizer. The key is
// kind.Code(e.Kind), a stable string independent of Kind's Go type name.
// An empty translation falls back to e.Kind.String(); a nil localizer or a
// nil Kind returns e.Error(), which does include the Causes.
func (e *ValidationError) Localize(localizer *i18n.Localizer) string {
	if e.Kind == nil || localizer == nil {
		return e.Error()
	}
	msg := localizer.Get(kind.Code(e.Kind))
	if msg == "" {
		return e.Kind.String()
	}
	return msg
}
