// Package catalog holds the translated strings shipped with legions: one
// YAML file per locale and namespace under locales/. The "core" namespace
// names phases and battle steps; "errors" holds the player-facing text of
// every error code.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every other one falls back to.
const BaseLocale = "en-US"

const coreNamespace = "core"

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = func() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return b
}()

// Default returns the bundle built from the embedded locales.
func Default() *Bundle { return defaultBundle }

type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type locale struct {
	byNamespace map[string]map[string]string
	all         map[string]string
}

// Bundle is an immutable set of locales.
type Bundle struct {
	locales map[string]*locale
	names   []string
	tags    []language.Tag
	matcher language.Matcher
	printer *catalog.Builder
}

// LoadEmbedded builds a bundle from the locales compiled into the binary.
func LoadEmbedded() (*Bundle, error) { return LoadFromFS(embedded) }

// LoadFromFS builds a bundle from fsys, which must hold
// locales/<locale>/<namespace>.yaml files including the base locale.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("find catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("no catalogs under locales/")
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]*locale{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if err := b.add(p, f); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if b.locales[BaseLocale] == nil {
		return nil, fmt.Errorf("base locale %s is missing", BaseLocale)
	}
	if err := b.index(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) add(p string, f file) error {
	wantLocale := path.Base(path.Dir(p))
	wantNamespace := strings.TrimSuffix(path.Base(p), ".yaml")
	switch name, ns := strings.TrimSpace(f.Locale), strings.TrimSpace(f.Namespace); {
	case name != wantLocale:
		return fmt.Errorf("locale %q does not match directory %q", name, wantLocale)
	case ns != wantNamespace:
		return fmt.Errorf("namespace %q does not match file name %q", ns, wantNamespace)
	case len(f.Messages) == 0:
		return errors.New("no messages")
	}

	loc := b.locales[wantLocale]
	if loc == nil {
		loc = &locale{byNamespace: map[string]map[string]string{}, all: map[string]string{}}
		b.locales[wantLocale] = loc
	}
	if loc.byNamespace[wantNamespace] != nil {
		return fmt.Errorf("namespace %s loaded twice", wantNamespace)
	}
	msgs := make(map[string]string, len(f.Messages))
	for key, text := range f.Messages {
		key = strings.TrimSpace(key)
		switch {
		case key == "":
			return errors.New("blank message key")
		case strings.HasPrefix(key, coreNamespace+".") && wantNamespace != coreNamespace:
			return fmt.Errorf("key %s belongs in the core namespace", key)
		}
		if _, dup := loc.all[key]; dup {
			return fmt.Errorf("key %s defined twice for %s", key, wantLocale)
		}
		loc.all[key] = text
		msgs[key] = text
	}
	loc.byNamespace[wantNamespace] = msgs
	return nil
}

// index orders the locales with the base first, so the matcher falls back
// to it, and registers core labels for Label.
func (b *Bundle) index() error {
	b.names = slices.Sorted(maps.Keys(b.locales))
	b.printer = catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale)))
	b.tags = []language.Tag{language.MustParse(BaseLocale)}
	for _, name := range b.names {
		tag, err := language.Parse(name)
		if err != nil {
			return fmt.Errorf("locale %q: %w", name, err)
		}
		if name != BaseLocale {
			b.tags = append(b.tags, tag)
		}
		for key, text := range b.locales[name].byNamespace[coreNamespace] {
			if err := b.printer.SetString(tag, key, text); err != nil {
				return fmt.Errorf("%s %s: %w", name, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return nil
}

// Match picks the bundle locale closest to requested, which may be a tag or
// an Accept-Language list. Anything unusable matches BaseLocale.
func (b *Bundle) Match(requested string) string {
	requested = strings.TrimSpace(requested)
	if b == nil || requested == "" {
		return BaseLocale
	}
	if b.HasLocale(requested) {
		return requested
	}
	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, i, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return b.tags[i].String()
}

// HasLocale reports whether name is loaded exactly.
func (b *Bundle) HasLocale(name string) bool {
	return b != nil && b.locales[strings.TrimSpace(name)] != nil
}

// Locales lists the loaded locales in order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Clone(b.names)
}

// LocaleMessages copies every message of one locale.
func (b *Bundle) LocaleMessages(name string) map[string]string {
	if !b.HasLocale(name) {
		return map[string]string{}
	}
	return maps.Clone(b.locales[strings.TrimSpace(name)].all)
}

// NamespaceMessages copies one namespace of one locale.
func (b *Bundle) NamespaceMessages(name, namespace string) map[string]string {
	if !b.HasLocale(name) {
		return map[string]string{}
	}
	msgs := b.locales[strings.TrimSpace(name)].byNamespace[strings.TrimSpace(namespace)]
	if msgs == nil {
		return map[string]string{}
	}
	return maps.Clone(msgs)
}

// NamespaceMessagesWithFallback matches requested and returns that locale's
// namespace, or the base locale's when the match lacks it.
func (b *Bundle) NamespaceMessagesWithFallback(requested, namespace string) (string, map[string]string) {
	resolved := b.Match(requested)
	if msgs := b.NamespaceMessages(resolved, namespace); len(msgs) > 0 {
		return resolved, msgs
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

// Label translates a core key such as "core.phase.move" for the locale
// matching requested. Unknown keys come back unchanged.
func (b *Bundle) Label(requested, key string) string {
	if b == nil {
		return key
	}
	tag := language.MustParse(b.Match(requested))
	return message.NewPrinter(tag, message.Catalog(b.printer)).Sprintf(message.Key(key, key))
}

// LabelKey builds the core key for a phase or battle step name, for
// example LabelKey("battle", "Drift damage") is "core.battle.drift_damage".
func LabelKey(group, name string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	return coreNamespace + "." + group + "." + slug
}
