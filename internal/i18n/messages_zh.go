package i18n

// chineseMessages contains all Simplified Chinese translations.
var chineseMessages = map[string]string{
	// Error messages
	"error.generic":           "出错了，请稍后再试。",
	"error.empty_query":       "请提供歌曲名或歌手名。",
	"error.invalid_key":       "请求链接无效。",
	"error.unknown_provider":  "未知的音源: %s",
	"error.invalid_interface": "无效的接口: %s",
	"error.unsupported":       "%s 不支持该操作。",
	"error.exhausted":         "所有接口均未找到可播放的结果。",
	"error.rate_limited":      "请求过于频繁，请稍后再试。",
	"error.upstream":          "上游接口请求失败，请稍后再试。",
	"error.not_found":         "未找到该路径。",
	"error.method":            "不支持的请求方法。",

	// Platform nicknames
	"platform.wy":    "云云",
	"platform.qq":    "秋秋",
	"platform.kg":    "狗狗",
	"platform.kg_sq": "狗狗高品",
	"platform.kw":    "蜗蜗",
	"platform.mg":    "咕咕",
	"platform.bd":    "点点",
	"platform.dy":    "豆豆",
	"platform.qs":    "七七",
	"platform.5s":    "五五",
	"platform.xmly":  "西西",

	// Format helpers
	"format.interface": "%s(%s)",
	"format.track":     "%s - %s",

	// Status messages
	"status.resolved":  "已找到: %s [%s]",
	"status.fallback":  "未找到高度匹配的结果，返回: %s [%s]",
	"status.enabled":   "启用",
	"status.disabled":  "停用",
	"status.no_lyrics": "暂无歌词",

	// Server messages
	"server.startup":  "服务已启动，监听 %s",
	"server.shutdown": "服务已停止",
}
