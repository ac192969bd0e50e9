package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"slibuy-scraper/models"
)

func TestApplySetting(t *testing.T) {
	s := models.DefaultSettings()

	require.NoError(t, ApplySetting(&s, "PRICEMIN", " 12.5 "))
	require.NoError(t, ApplySetting(&s, "targets", " lego, Duplo ,, LEGO"))
	require.NoError(t, ApplySetting(&s, "hideEnded", "false"))
	require.NoError(t, ApplySetting(&s, "sortKey", "price"))
	require.NoError(t, ApplySetting(&s, "range", "2days"))

	require.Equal(t, 12.5, s.PriceMin)
	require.Equal(t, []string{"lego", "Duplo"}, s.Targets)
	require.False(t, s.HideEnded)
	require.Equal(t, "price", s.SortKey)
	require.Equal(t, models.Range2Days, s.Range)
	require.Equal(t, "lego, Duplo", SettingValue(s, "targets"))
	require.Equal(t, "12.5", SettingValue(s, "priceMin"))

	require.NoError(t, ApplySetting(&s, "range", "fortnight"))
	require.Equal(t, models.RangeAll, s.Range)

	require.NoError(t, ApplySetting(&s, "blacklist", ""))
	require.Empty(t, s.Blacklist)
}

func TestApplySettingErrors(t *testing.T) {
	s := models.DefaultSettings()
	require.Error(t, ApplySetting(&s, "colour", "red"))
	require.Error(t, ApplySetting(&s, "priceMin", "cheap"))
	require.Error(t, ApplySetting(&s, "hideEnded", "maybe"))
	require.Equal(t, models.DefaultSettings().PriceMin, s.PriceMin)
}

func TestDecodeSettings(t *testing.T) {
	base := models.DefaultSettings()

	s, err := DecodeSettings([]byte("priceMax: 40\ntargets: [desk, lamp]\n"), ".yaml", base)
	require.NoError(t, err)
	require.Equal(t, 40.0, s.PriceMax)
	require.Equal(t, []string{"desk", "lamp"}, s.Targets)
	require.True(t, s.HideEnded, "keys missing from the file keep base values")

	s, err = DecodeSettings([]byte("{\n  // json5 allows comments\n  priceMin: 3,\n  hideEnded: false,\n}"), ".json5", base)
	require.NoError(t, err)
	require.Equal(t, 3.0, s.PriceMin)
	require.False(t, s.HideEnded)

	_, err = DecodeSettings([]byte("{not json"), "json", base)
	require.Error(t, err)
}

func TestEncodeSettings(t *testing.T) {
	s := models.DefaultSettings()
	s.Targets = []string{"desk"}

	data, err := EncodeSettings(s, "yaml")
	require.NoError(t, err)
	require.Contains(t, string(data), "targets:\n  - desk\n")

	data, err = EncodeSettings(s, "json")
	require.NoError(t, err)
	require.Contains(t, string(data), `"targets": [`)

	_, err = EncodeSettings(s, "toml")
	require.Error(t, err)
}

func TestSettingsFileRoundTrip(t *testing.T) {
	s := models.DefaultSettings()
	s.Blacklist = []string{"broken"}
	s.PriceMax = 75
	s.TargetsFirst = false

	for _, name := range []string{"settings.yaml", "settings.json"} {
		path := filepath.Join(t.TempDir(), "nested", name)
		require.NoError(t, WriteSettingsFile(path, s))

		got, err := ReadSettingsFile(path, models.Settings{})
		require.NoError(t, err)
		require.Equal(t, s, got, name)
	}

	_, err := ReadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml"), s)
	require.Error(t, err)
}
