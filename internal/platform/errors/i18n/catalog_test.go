package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetCatalogResolvesLocales(t *testing.T) {
	base := GetCatalog("en-US")
	require.NotNil(t, base)
	require.Same(t, base, GetCatalog(""))
	require.Same(t, base, GetCatalog("xx-YY"))
	require.Equal(t, "pt-BR", GetCatalog("pt").Locale())
	require.Equal(t, "pt-BR", GetCatalog("pt-BR").Locale())
}

func TestFormat(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"GREETING":  "hello {{.Name}}",
		"BAD_PARSE": "{{ if .Name }}",
		"BAD_EXEC":  "{{ call .Name }}",
	})
	tests := []struct {
		code     Code
		metadata map[string]string
		want     string
	}{
		{"GREETING", map[string]string{"Name": "Ada"}, "hello Ada"},
		{"GREETING", nil, "hello <no value>"},
		{"UNKNOWN", nil, "UNKNOWN"},
		{"BAD_PARSE", map[string]string{"Name": "X"}, "{{ if .Name }}"},
		{"BAD_EXEC", map[string]string{"Name": "X"}, "{{ call .Name }}"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, cat.Format(tc.code, tc.metadata), string(tc.code))
	}
	require.True(t, cat.Has("GREETING"))
	require.False(t, cat.Has("UNKNOWN"))
}

func TestRegisterCatalogReplaces(t *testing.T) {
	first := NewCatalog("x-test", map[Code]string{"A": "one"})
	second := NewCatalog("x-test", map[Code]string{"A": "two"})
	RegisterCatalog("x-test", first)
	RegisterCatalog("x-test", second)
	require.Same(t, second, GetCatalog("x-test"))
}

func TestEmbeddedErrorMessages(t *testing.T) {
	require.Equal(t, "Legion Rd01 cannot move to hex 7.",
		GetCatalog("en-US").Format("ILLEGAL_MOVE", map[string]string{"Marker": "Rd01", "Hex": "7"}))
	require.Equal(t, "Não há nada para desfazer.", GetCatalog("pt").Format("NOTHING_TO_UNDO", nil))
}
