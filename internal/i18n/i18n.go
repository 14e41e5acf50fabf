// Package i18n maps message keys to localized text. Supported locales are
// English (default), Korean and Japanese.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the locales with a full catalog, default first.
var Supported = []language.Tag{language.English, language.Korean, language.Japanese}

var (
	matcher = language.NewMatcher(Supported)
	cat     = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, m := range messages {
		mustSet(b, language.English, m.key, m.en)
		mustSet(b, language.Korean, m.key, m.ko)
		mustSet(b, language.Japanese, m.key, m.ja)
	}
	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, msg string) {
	if msg == "" {
		return
	}
	if err := b.SetString(tag, key, msg); err != nil {
		panic("i18n: bad catalog entry " + key + ": " + err.Error())
	}
}

// Translator renders message keys in one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for locale, matched against Supported.
// Unknown or empty locales fall back to English.
func New(locale string) *Translator {
	tag := Match(locale)
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Locale returns the matched locale, e.g. "ko".
func (t *Translator) Locale() string {
	base, _ := t.tag.Base()
	return base.String()
}

// T formats the message for key with args.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Match returns the supported locale closest to locale.
func Match(locale string) language.Tag {
	locale = normalize(locale)
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Detect picks the locale from LC_ALL, LC_MESSAGES and LANG, in that order
// of precedence. getenv is usually os.Getenv.
func Detect(getenv func(string) string) string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(name); v != "" {
			base, _ := Match(v).Base()
			return base.String()
		}
	}
	return "en"
}

// normalize turns POSIX locale names like "ko_KR.UTF-8@euro" into BCP 47.
func normalize(locale string) string {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "C" || locale == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(locale, "_", "-")
}
