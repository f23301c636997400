// Package text turns free-form song requests and share messages into resolver queries.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"musicpin/internal/core"
	"musicpin/pkg/musiclink"
)

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	bookTitleRegex  = regexp.MustCompile(`《([^》]+)》`)
	separatorRegex  = regexp.MustCompile(`\s+[-–—]\s+|(?i:\s+by\s+)`)
	parenRegex      = regexp.MustCompile(`\([^)]*\)`)
	requestRegex    = regexp.MustCompile(`(?i)^(?:play\s+|点歌[:\s]*|播放|来一首)`)

	// Share hosts by platform. Lookups walk from the full host to its parents, so
	// subdomains listed here win over their parent domain.
	shareHosts = map[string]musiclink.Platform{
		"music.163.com":     musiclink.PlatformNetEase,
		"163cn.tv":          musiclink.PlatformNetEase,
		"y.qq.com":          musiclink.PlatformQQ,
		"5sing.kugou.com":   musiclink.Platform5Sing,
		"kugou.com":         musiclink.PlatformKugou,
		"kuwo.cn":           musiclink.PlatformKuwo,
		"migu.cn":           musiclink.PlatformMigu,
		"music.91q.com":     musiclink.PlatformBaidu,
		"qishui.douyin.com": musiclink.PlatformQishui,
		"douyin.com":        musiclink.PlatformDouyin,
		"iesdouyin.com":     musiclink.PlatformDouyin,
		"ximalaya.com":      musiclink.PlatformXimalaya,
	}

	sharePrefixes = []string{"我分享了", "分享了", "分享"}
	shareSuffixes = []string{"的单曲", "的歌曲", "的歌", "的"}

	trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "share_token"}
)

// Request is a parsed song request.
type Request struct {
	Query core.Query
	// Platform is the catalog hinted by a share link, or empty.
	Platform musiclink.Platform
	URLs     []string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseRequest extracts song, artist and share links from a message. Text in 《》
// is taken as the song title; otherwise the first " - " or " by " splits song from artist.
func (p *Parser) ParseRequest(text string) Request {
	text = p.normalizeText(text)
	urls := p.extractURLs(text)

	req := Request{URLs: urls}
	for _, u := range urls {
		if platform, ok := p.sharePlatform(u); ok {
			req.Platform = platform
			break
		}
	}

	rest := urlRegex.ReplaceAllString(text, " ")
	rest = strings.TrimSpace(whitespaceRegex.ReplaceAllString(rest, " "))
	req.Query = p.splitQuery(trimSeparators(rest))
	return req
}

// ParseQuery is ParseRequest without the link details.
func (p *Parser) ParseQuery(text string) core.Query {
	return p.ParseRequest(text).Query
}

func (p *Parser) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)

	lines := strings.Split(text, "\n")
	var normalizedLines []string
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
		if line != "" {
			normalizedLines = append(normalizedLines, line)
		}
	}

	return strings.Join(normalizedLines, " ")
}

func (p *Parser) splitQuery(text string) core.Query {
	text = strings.TrimSpace(requestRegex.ReplaceAllString(text, ""))
	if text == "" {
		return core.Query{}
	}

	if loc := bookTitleRegex.FindStringSubmatchIndex(text); loc != nil {
		song := strings.TrimSpace(text[loc[2]:loc[3]])
		artist := p.shareArtist(text[:loc[0]])
		if artist == "" {
			after := parenRegex.ReplaceAllString(text[loc[1]:], " ")
			artist = trimSeparators(after)
		}
		return core.Query{Song: song, Artist: artist}
	}

	if loc := separatorRegex.FindStringIndex(text); loc != nil {
		return core.Query{
			Song:   trimSeparators(text[:loc[0]]),
			Artist: trimSeparators(text[loc[1]:]),
		}
	}

	return core.Query{Song: text}
}

// shareArtist strips share boilerplate around the artist name, e.g. "分享Beyond的单曲".
func (p *Parser) shareArtist(text string) string {
	text = trimSeparators(text)
	for _, prefix := range sharePrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			break
		}
	}
	for _, suffix := range shareSuffixes {
		if strings.HasSuffix(text, suffix) {
			text = strings.TrimSuffix(text, suffix)
			break
		}
	}
	return trimSeparators(text)
}

func trimSeparators(s string) string {
	return strings.Trim(s, " :-–—|,")
}

func (p *Parser) extractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	var cleanURLs []string

	for _, match := range matches {
		cleanURL := p.cleanURL(match)
		if cleanURL != "" {
			cleanURLs = append(cleanURLs, cleanURL)
		}
	}

	return cleanURLs
}

func (p *Parser) cleanURL(rawURL string) string {
	rawURL = strings.TrimRight(rawURL, ".,!?;")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// sharePlatform maps a share link to the platform it points into.
func (p *Parser) sharePlatform(rawURL string) (musiclink.Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for host != "" {
		if platform, ok := shareHosts[host]; ok {
			return platform, true
		}
		_, parent, found := strings.Cut(host, ".")
		if !found {
			break
		}
		host = parent
	}
	return "", false
}
