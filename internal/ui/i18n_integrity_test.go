package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-datepicker/internal/config"
)

var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyLblDay,
	config.TKeyLblMonth,
	config.TKeyLblYear,
	config.TKeyLblPicker,
	config.TKeyLblUpdated,
	config.TKeyLblNotUpdated,
	config.TKeyLblFormats,
	config.TKeyLblDayFormat,
	config.TKeyLblMonthFormat,
	config.TKeyHelpFormat,
	config.TKeyLblJumpYear,
	config.TKeyHelpJumpYear,
	config.TKeyLblLanguage,
	config.TKeyBtnApply,
	config.TKeyBtnToday,
	config.TKeyBtnImport,
	config.TKeyLblContacts,
	config.TKeyLblFeed,
	config.TKeyLblFeedOff,
	config.TKeyEvtSummary,
	config.TKeyErrImport,
	config.TKeyErrNoBirthdays,
	config.TKeyErrYearNum,
	config.TKeyErrFormatEmpty,
	config.TKeyErrFormatDup,
}

func loadLocale(t *testing.T, lang string) map[string]interface{} {
	t.Helper()
	name := config.LocalePrefix + lang + config.LocaleSuffix
	content, err := os.ReadFile(filepath.Join(config.LocalesDir, name))
	require.NoError(t, err, "must load %s", name)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &m), "%s must be valid JSON", name)
	return m
}

// TestI18nIntegrity ensures every translation key used by the code exists in
// every shipped language, and that no locale carries stray keys.
func TestI18nIntegrity(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			m := loadLocale(t, lang)
			for _, key := range translationKeys {
				assert.Containsf(t, m, key, "key %q missing in %s", key, lang)
			}
			assert.Lenf(t, m, len(translationKeys), "%s has keys the code never uses", lang)
		})
	}
}

// TestI18nTemplates checks that templated messages keep their placeholder.
func TestI18nTemplates(t *testing.T) {
	placeholders := map[string]string{
		config.TKeyLblUpdated: "{{." + config.TemplateKeyDate + "}}",
		config.TKeyEvtSummary: "{{." + config.TemplateKeyDate + "}}",
		config.TKeyLblFeed:    "{{." + config.TemplateKeyURL + "}}",
	}
	for _, lang := range config.SupportedLanguages {
		m := loadLocale(t, lang)
		for key, ph := range placeholders {
			assert.Containsf(t, m[key], ph, "%s/%s lost its placeholder", lang, key)
		}
	}
}
