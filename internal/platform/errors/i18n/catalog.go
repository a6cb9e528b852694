// Package i18n renders localized messages for error codes.
//
// Messages live in the "errors" namespace of the embedded locale catalogs and
// are text/template strings over the error metadata, e.g.
// "Legion {{.Marker}} cannot move to hex {{.Hex}}.".
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/legions/internal/platform/i18n/catalog"
)

// errorsNamespace is the catalog namespace holding error messages.
const errorsNamespace = "errors"

// Code is an error code. It mirrors errors.Code, which imports this package.
type Code = string

type message struct {
	raw  string
	tmpl *template.Template // nil when raw does not parse
}

// Catalog holds the error messages of one locale.
type Catalog struct {
	locale   string
	messages map[Code]message
}

var registry = struct {
	sync.RWMutex
	byLocale map[string]*Catalog
}{byLocale: map[string]*Catalog{}}

// GetCatalog returns the catalog for locale. Unknown locales resolve to the
// closest embedded one, and to en-US when nothing matches.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c := lookup(requested); c != nil {
		return c
	}
	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, errorsNamespace)
	if c := lookup(resolved); c != nil {
		return c
	}
	return register(resolved, NewCatalog(resolved, messages), false)
}

// RegisterCatalog installs cat for locale, replacing any cached catalog.
func RegisterCatalog(locale string, cat *Catalog) {
	register(locale, cat, true)
}

// NewCatalog compiles messages for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{locale: locale, messages: make(map[Code]message, len(messages))}
	for code, raw := range messages {
		tmpl, err := template.New(code).Parse(raw)
		if err != nil {
			tmpl = nil
		}
		c.messages[code] = message{raw: raw, tmpl: tmpl}
	}
	return c
}

// Locale returns the locale of the catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Has reports whether the catalog has a message for code.
func (c *Catalog) Has(code Code) bool {
	_, ok := c.messages[code]
	return ok
}

// Format renders the message of code with metadata. It returns the code when
// there is no message, and the raw message when it cannot be rendered.
// Missing metadata keys render as "<no value>".
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return code
	}
	if msg.tmpl == nil {
		return msg.raw
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := msg.tmpl.Execute(&b, metadata); err != nil {
		return msg.raw
	}
	return b.String()
}

func lookup(locale string) *Catalog {
	registry.RLock()
	defer registry.RUnlock()
	return registry.byLocale[locale]
}

// register stores cat unless another catalog won the race, in which case
// the existing one is returned.
func register(locale string, cat *Catalog, replace bool) *Catalog {
	registry.Lock()
	defer registry.Unlock()
	if existing, ok := registry.byLocale[locale]; ok && !replace {
		return existing
	}
	registry.byLocale[locale] = cat
	return cat
}
