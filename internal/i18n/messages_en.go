package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":           "Something went wrong. Please try again.",
	"error.empty_query":       "Please give a song title or an artist.",
	"error.invalid_key":       "The request link is not valid.",
	"error.unknown_provider":  "Unknown source: %s",
	"error.invalid_interface": "Invalid interface: %s",
	"error.unsupported":       "%s does not support this.",
	"error.exhausted":         "No interface returned a playable result.",
	"error.rate_limited":      "Too many requests. Please slow down.",
	"error.upstream":          "An upstream source failed. Please try again.",
	"error.not_found":         "Not found.",
	"error.method":            "Method not allowed.",

	// Platform nicknames
	"platform.wy":    "Yunyun",
	"platform.qq":    "Qiuqiu",
	"platform.kg":    "Gougou",
	"platform.kg_sq": "Gougou HQ",
	"platform.kw":    "Wowo",
	"platform.mg":    "Gugu",
	"platform.bd":    "Diandian",
	"platform.dy":    "Doudou",
	"platform.qs":    "Qiqi",
	"platform.5s":    "Wuwu",
	"platform.xmly":  "Xixi",

	// Format helpers
	"format.interface": "%s (%s)",
	"format.track":     "%s - %s",

	// Status messages
	"status.resolved":  "Found: %s [%s]",
	"status.fallback":  "No close match, returning: %s [%s]",
	"status.enabled":   "enabled",
	"status.disabled":  "disabled",
	"status.no_lyrics": "No lyrics available",

	// Server messages
	"server.startup":  "Listening on %s",
	"server.shutdown": "Server stopped",
}
