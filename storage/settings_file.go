package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"slibuy-scraper/models"
)

// SettingKeys are the names accepted by ApplySetting, in display order.
var SettingKeys = []string{
	"range", "priceMin", "priceMax", "hideBlacklist", "targetsOnly", "hideEnded",
	"watchOnly", "sortKey", "sortDesc", "targetsFirst", "targets", "blacklist",
}

var listKeys = map[string]bool{"targets": true, "blacklist": true}

// ApplySetting sets one field from its text form. Lists are comma separated.
func ApplySetting(s *models.Settings, key, value string) error {
	key = canonicalKey(key)
	if key == "" {
		return fmt.Errorf("settings: unknown key (want one of %s)", strings.Join(SettingKeys, ", "))
	}

	val := &yaml.Node{Kind: yaml.ScalarNode, Value: strings.TrimSpace(value)}
	if listKeys[key] {
		val = &yaml.Node{Kind: yaml.SequenceNode}
		for _, w := range strings.Split(value, ",") {
			if w = strings.TrimSpace(w); w != "" {
				val.Content = append(val.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: w})
			}
		}
	} else if key == "range" || key == "sortKey" {
		val.Tag = "!!str"
	}

	doc := &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, val},
	}
	if err := doc.Decode(s); err != nil {
		return fmt.Errorf("settings: %s: %w", key, err)
	}
	*s = normaliseSettings(*s)
	return nil
}

func canonicalKey(key string) string {
	for _, k := range SettingKeys {
		if strings.EqualFold(k, strings.TrimSpace(key)) {
			return k
		}
	}
	return ""
}

// SettingValue renders one field the way ApplySetting reads it.
func SettingValue(s models.Settings, key string) string {
	switch canonicalKey(key) {
	case "range":
		return string(s.Range)
	case "priceMin":
		return fmt.Sprint(s.PriceMin)
	case "priceMax":
		return fmt.Sprint(s.PriceMax)
	case "hideBlacklist":
		return fmt.Sprint(s.HideBlacklist)
	case "targetsOnly":
		return fmt.Sprint(s.TargetsOnly)
	case "hideEnded":
		return fmt.Sprint(s.HideEnded)
	case "watchOnly":
		return fmt.Sprint(s.WatchOnly)
	case "sortKey":
		return s.SortKey
	case "sortDesc":
		return fmt.Sprint(s.SortDesc)
	case "targetsFirst":
		return fmt.Sprint(s.TargetsFirst)
	case "targets":
		return strings.Join(s.Targets, ", ")
	case "blacklist":
		return strings.Join(s.Blacklist, ", ")
	}
	return ""
}

// DecodeSettings reads YAML (.yaml, .yml) or JSON5 (anything else, which
// includes plain JSON) over base. Keys missing from data keep base values.
func DecodeSettings(data []byte, format string, base models.Settings) (models.Settings, error) {
	s := base
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json5.Unmarshal(data, &s)
	}
	if err != nil {
		return base, fmt.Errorf("settings: decode %s: %w", format, err)
	}
	return normaliseSettings(s), nil
}

// EncodeSettings writes s as YAML or indented JSON.
func EncodeSettings(s models.Settings, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("settings: encode yaml: %w", err)
		}
		enc.Close()
		return buf.Bytes(), nil
	case "json", "json5":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("settings: encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("settings: unknown format %q (want yaml or json)", format)
}

// ReadSettingsFile decodes path over base, picking the format from the
// file extension.
func ReadSettingsFile(path string, base models.Settings) (models.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("settings: read %q: %w", path, err)
	}
	return DecodeSettings(data, filepath.Ext(path), base)
}

// WriteSettingsFile encodes s to path, picking the format from the file
// extension.
func WriteSettingsFile(path string, s models.Settings) error {
	data, err := EncodeSettings(s, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
