package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"es", "en"}, m.Languages())

	tr := m.Default()
	assert.Equal(t, "es", tr.Lang())
	assert.Equal(t, "🔒 No se encontró la API key de OpenAI.", tr.T("errors.missing_credential"))
	assert.Equal(t, "🧠 Analizando el mercado con IA...", tr.T("bot.analyzing"))
}

func TestManager_TranslatorNormalizesTags(t *testing.T) {
	m, err := Load("es")
	require.NoError(t, err)

	testCases := []struct {
		name string
		lang string
		want string
	}{
		{name: "region subtag", lang: "es-AR", want: "es"},
		{name: "underscore and case", lang: "EN_us", want: "en"},
		{name: "unknown language falls back", lang: "fr", want: "es"},
		{name: "empty falls back", lang: "", want: "es"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Translator(tc.lang).Lang())
		})
	}
}

func TestTranslator_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog/base.yaml": {Data: []byte("es:\n  greeting: hola\n  only_es: solo\n")},
		"catalog/en.yml":    {Data: []byte("en:\n  greeting: hello\n")},
		"catalog/notes.txt": {Data: []byte("ignored")},
	}

	m, err := LoadFromFS(fsys, "catalog", "es")
	require.NoError(t, err)

	en := m.Translator("en")
	assert.Equal(t, "hello", en.T("greeting"))
	assert.Equal(t, "solo", en.T("only_es"))
	assert.Equal(t, "missing.key", en.T("missing.key"))
	assert.Equal(t, "", en.T("  "))
}

func TestLoadFromFS_Errors(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{"catalog/en.yaml": {Data: []byte("en:\n  a: b\n")}}, "catalog", "es")
	assert.Error(t, err)

	_, err = LoadFromFS(fstest.MapFS{"catalog/readme.md": {Data: []byte("x")}}, "catalog", "es")
	assert.Error(t, err)

	_, err = LoadFromFS(fstest.MapFS{"catalog/es.yaml": {Data: []byte("es: [")}}, "catalog", "es")
	assert.Error(t, err)
}

func TestNilManager(t *testing.T) {
	var m *Manager
	tr := m.Translator("es")
	assert.Equal(t, "errors.unknown", tr.T("errors.unknown"))
	assert.Nil(t, m.Languages())
}
