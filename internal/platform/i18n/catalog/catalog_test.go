package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeLocales(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, "locales", name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestEmbeddedLocales(t *testing.T) {
	b, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Locales(); !slices.Equal(got, []string{"en-US", "pt-BR"}) {
		t.Fatalf("locales = %v", got)
	}
	for _, name := range b.Locales() {
		if len(b.NamespaceMessages(name, "core")) == 0 || len(b.NamespaceMessages(name, "errors")) == 0 {
			t.Fatalf("%s lacks a namespace", name)
		}
	}
	en := b.LocaleMessages(BaseLocale)
	en["core.phase.move"] = "changed"
	if b.LocaleMessages(BaseLocale)["core.phase.move"] != "Move" {
		t.Fatal("LocaleMessages leaked internal map")
	}
}

func TestLocalesDefineTheSameKeys(t *testing.T) {
	b := Default()
	base := b.LocaleMessages(BaseLocale)
	for _, name := range b.Locales() {
		msgs := b.LocaleMessages(name)
		for key := range base {
			if _, ok := msgs[key]; !ok {
				t.Errorf("%s: missing %s", name, key)
			}
		}
	}
}

func TestLoadFromFSValidation(t *testing.T) {
	tests := map[string]map[string]string{
		"core key outside core": {
			"en-US/core.yaml":   "locale: en-US\nnamespace: core\nmessages:\n  core.ok: ok\n",
			"en-US/errors.yaml": "locale: en-US\nnamespace: errors\nmessages:\n  core.bad: nope\n",
		},
		"duplicate key": {
			"en-US/core.yaml":   "locale: en-US\nnamespace: core\nmessages:\n  a.key: a\n",
			"en-US/errors.yaml": "locale: en-US\nnamespace: errors\nmessages:\n  a.key: b\n",
		},
		"namespace mismatch": {
			"en-US/errors.yaml": "locale: en-US\nnamespace: core\nmessages:\n  core.ok: ok\n",
		},
		"locale mismatch": {
			"en-US/core.yaml": "locale: pt-BR\nnamespace: core\nmessages:\n  core.ok: ok\n",
		},
		"no base locale": {
			"pt-BR/core.yaml": "locale: pt-BR\nnamespace: core\nmessages:\n  core.ok: ok\n",
		},
		"empty messages": {
			"en-US/core.yaml": "locale: en-US\nnamespace: core\n",
		},
		"nothing": {},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFromFS(os.DirFS(writeLocales(t, files))); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMatch(t *testing.T) {
	b := Default()
	tests := map[string]string{
		"":                     BaseLocale,
		"pt-BR":                "pt-BR",
		"pt":                   "pt-BR",
		"en-GB":                BaseLocale,
		"fr-FR":                BaseLocale,
		"not a language tag!!": BaseLocale,
	}
	for requested, want := range tests {
		if got := b.Match(requested); got != want {
			t.Errorf("Match(%q) = %q, want %q", requested, got, want)
		}
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	b := Default()
	resolved, msgs := b.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale || len(msgs) == 0 {
		t.Fatalf("got %q with %d messages", resolved, len(msgs))
	}
	resolved, msgs = b.NamespaceMessagesWithFallback("pt", "errors")
	if resolved != "pt-BR" || !strings.Contains(msgs["NOT_YOUR_TURN"], "vez") {
		t.Fatalf("got %q %q", resolved, msgs["NOT_YOUR_TURN"])
	}
}

func TestLabel(t *testing.T) {
	b := Default()
	tests := []struct {
		locale, key, want string
	}{
		{"en-US", LabelKey("phase", "Move"), "Move"},
		{"pt-BR", LabelKey("phase", "Muster"), "Recrutamento"},
		{"pt", LabelKey("battle", "Drift damage"), "Dano de terreno"},
		{"fr", LabelKey("battle", "Counterstrike"), "Counterstrike"},
		{"pt-BR", "core.phase.unknown", "core.phase.unknown"},
	}
	for _, tc := range tests {
		if got := b.Label(tc.locale, tc.key); got != tc.want {
			t.Errorf("Label(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}
	if LabelKey("battle", " Drift damage ") != "core.battle.drift_damage" {
		t.Fatal("unexpected key")
	}
}
