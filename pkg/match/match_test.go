package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsSensitivity(t *testing.T) {
	tests := []struct {
		name        string
		sensitivity Sensitivity
		text        string
		query       string
		want        bool
	}{
		{"base ignores case", SensitivityBase, "Bar", "ba", true},
		{"base ignores accents", SensitivityBase, "Café", "cafe", true},
		{"base folds sharp s", SensitivityBase, "Straße", "STRASSE", true},
		{"accent ignores case", SensitivityAccent, "CAFÉ", "café", true},
		{"accent keeps accents", SensitivityAccent, "Cafe", "café", false},
		{"case ignores accents", SensitivityCase, "Café", "Cafe", true},
		{"case keeps case", SensitivityCase, "Cafe", "cafe", false},
		{"variant exact", SensitivityVariant, "Café", "Café", true},
		{"variant normalizes composition", SensitivityVariant, "Cafe\u0301", "Café", true},
		{"variant keeps case", SensitivityVariant, "Cafe", "cafe", false},
		{"no match", SensitivityBase, "Foo", "ba", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Contains(tt.query, WithSensitivity(tt.sensitivity))
			assert.Equal(t, tt.want, p(tt.text))
		})
	}
}

func TestModes(t *testing.T) {
	tests := []struct {
		mode  Mode
		query string
		text  string
		want  bool
	}{
		{ModeContains, "ast", "Paste", true},
		{ModeStartsWith, "pa", "Paste", true},
		{ModeStartsWith, "ste", "Paste", false},
		{ModeEndsWith, "STE", "Paste", true},
		{ModeEndsWith, "pa", "Paste", false},
		{ModeFuzzy, "pst", "Paste", true},
		{ModeFuzzy, "tsp", "Paste", false},
		{ModeFuzzy, "nwfl", "New File", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.query, func(t *testing.T) {
			p, err := New(tt.mode, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p(tt.text))
		})
	}
}

func TestFuzzyHonorsSensitivity(t *testing.T) {
	assert.True(t, Fuzzy("cfe")("Café"))
	assert.False(t, Fuzzy("CF", WithSensitivity(SensitivityVariant))("Café"))
	assert.True(t, Fuzzy("CF", WithSensitivity(SensitivityVariant))("CaFé"))
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	for _, mode := range ValidModes {
		p, err := New(mode, "")
		require.NoError(t, err)
		assert.True(t, p("anything"), "mode %s", mode)
		assert.True(t, p(""), "mode %s", mode)
	}
}

func TestHelpers(t *testing.T) {
	assert.True(t, StartsWith("co")("Copy"))
	assert.True(t, EndsWith("py")("Copy"))
	assert.False(t, EndsWith("co")("Copy"))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":            ModeContains,
		"Contains":    ModeContains,
		"prefix":      ModeStartsWith,
		"starts-with": ModeStartsWith,
		"suffix":      ModeEndsWith,
		"fuzzy":       ModeFuzzy,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("regex")
	assert.Error(t, err)
}

func TestParseSensitivity(t *testing.T) {
	got, err := ParseSensitivity("")
	require.NoError(t, err)
	assert.Equal(t, SensitivityBase, got)

	got, err = ParseSensitivity("ACCENT")
	require.NoError(t, err)
	assert.Equal(t, SensitivityAccent, got)

	_, err = ParseSensitivity("loose")
	assert.Error(t, err)
}

func TestNewRejectsUnknownValues(t *testing.T) {
	_, err := New(Mode("regex"), "x")
	assert.Error(t, err)
	_, err = New(ModeContains, "x", WithSensitivity("loose"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "creme brulee", Normalize(SensitivityBase, "Crème Brûlée"))
	assert.Equal(t, "crème brûlée", Normalize(SensitivityAccent, "Crème Brûlée"))
	assert.Equal(t, "Creme Brulee", Normalize(SensitivityCase, "Crème Brûlée"))
	assert.Equal(t, "Crème Brûlée", Normalize(SensitivityVariant, "Crème Brûlée"))
}
