// ABOUTME: Ordered selector lists driving HTML extraction, first match wins
// ABOUTME: Kept as data so tests can assert on priority and new selectors slot in without control-flow changes

package extractor

// noiseSelectors are removed from the document before any extraction.
// Order matters only for readability; removal is unconditional.
var noiseSelectors = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"nav",
	"header",
	"footer",
	"aside",
	".advertisement",
	".ads",
	"[class*='advert']",
	".social",
	".social-share",
	".share-buttons",
	".comments",
	"#comments",
	".comment-section",
	".newsletter",
	".subscribe",
	".popup",
	".modal",
	".cookie-banner",
	".cookie-consent",
	".sidebar",
	"#sidebar",
	".menu",
	".widget",
	".promo",
	".banner",
	".related-posts",
}

// titleSelectors are tried in order; the first non-empty match wins.
var titleSelectors = []string{
	"h1",
	".post-title",
	".article-title",
	".entry-title",
	"[itemprop='headline']",
	"title",
}

// contentSelectors are tried in order; the first candidate whose text
// exceeds the qualification threshold wins. When none qualifies the
// extractor falls back to concatenating all paragraphs.
var contentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	".article-content",
	".article-body",
	".post-content",
	".entry-content",
	".story-body",
	".post-body",
	"#content",
	".content",
}

// contentQualifyLength is the minimum text length for a content
// container candidate to be accepted.
const contentQualifyLength = 200

// userAgents is a small pool of realistic browser user agents, rotated
// per request to look less like a single automated client.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}
