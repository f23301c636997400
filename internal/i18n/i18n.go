// Package i18n provides internationalization support for user-facing messages
package i18n

import (
	"fmt"
	"strings"
)

const (
	// DefaultLanguage is the fallback language when no translation is available
	DefaultLanguage = "zh"
	// EnglishMessages is the English profile
	EnglishMessages = "en"
)

// Localizer provides translation functionality
type Localizer struct {
	language string
	messages map[string]string
}

// NewLocalizer creates a new localizer for the specified language
func NewLocalizer(language string) *Localizer {
	return &Localizer{
		language: language,
		messages: getMessages(language),
	}
}

// Language returns the language the localizer was created for.
func (l *Localizer) Language() string {
	return l.language
}

// T translates a message key, with optional parameters for formatting
func (l *Localizer) T(key string, args ...interface{}) string {
	if message, exists := l.messages[key]; exists {
		if len(args) > 0 {
			return fmt.Sprintf(message, args...)
		}
		return message
	}

	// Fallback to the default language if key not found in current language
	if l.language != DefaultLanguage {
		if fallbackMessage, exists := getMessages(DefaultLanguage)[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(fallbackMessage, args...)
			}
			return fallbackMessage
		}
	}

	// Ultimate fallback: return the key itself
	return key
}

// PlatformName returns the display nickname of a platform code such as "wy".
// Unknown codes are returned unchanged.
func (l *Localizer) PlatformName(platform string) string {
	key := "platform." + platform
	if name := l.T(key); name != key {
		return name
	}
	return platform
}

// InterfaceLabel formats a platform:provider pair for display, e.g. "云云(SBY)".
func (l *Localizer) InterfaceLabel(platform, provider string) string {
	return l.T("format.interface", l.PlatformName(platform), strings.ToUpper(provider))
}

// GetSupportedLanguages returns list of supported language codes
func GetSupportedLanguages() []string {
	return []string{DefaultLanguage, EnglishMessages}
}

// IsSupported reports whether language has its own message profile.
func IsSupported(language string) bool {
	for _, l := range GetSupportedLanguages() {
		if l == language {
			return true
		}
	}
	return false
}

// getMessages returns the message map for a given language
func getMessages(language string) map[string]string {
	switch language {
	case DefaultLanguage:
		return chineseMessages
	case EnglishMessages:
		return englishMessages
	default:
		return chineseMessages
	}
}
