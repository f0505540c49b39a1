// Package websearch finds wrecks through the websites of local diving
// centers: web search per municipality, domain filtering, page fetch,
// and wreck name extraction from page text.
package websearch

import "strings"

// trustedDomainKeywords mark a domain as dive-related regardless of TLD.
var trustedDomainKeywords = []string{
	"diving", "dive", "sub", "scuba", "immersion", "plongee", "plongée",
	"buceo", "tauchen", "apnea", "underwater", "nautica", "marina", "porto",
	"port", "yacht",
}

// trustedTLDs are the coastal-Europe TLDs we accept without a dive keyword.
var trustedTLDs = []string{
	".it", ".fr", ".es", ".pt", ".gr", ".hr", ".si", ".de", ".co.uk", ".ch",
}

// excludedDomainKeywords drop social networks, marketplaces, and
// aggregators outright.
var excludedDomainKeywords = []string{
	"facebook", "instagram", "twitter", "youtube", "tiktok", "tripadvisor",
	"booking", "amazon", "ebay", "reddit", "bing", "google", "yahoo",
	"pinterest", "wordpress", "blogspot", "medium", "weebly", "shopify",
	"alibaba", "trip", "kayak", "expedia", "airbnb", "skyscanner",
}

// excludedTLDs are institutional domains that never host dive site lists.
var excludedTLDs = []string{".gov", ".gouv", ".edu", ".int"}

// excludedContentDomains reject encyclopedias, newspapers, and boating
// portals before a page fetch. A newspaper article about a wreck is not
// a dive site listing.
var excludedContentDomains = []string{
	"wikipedia.org", "wikidata.org", "dbpedia.org",
	"news", "giornale", "quotidiano", "reporter", "notizie", "articolo",
	"blog", "forum", "yacht", "barche", "porti", "ormeggi", "turismo",
	"nautica", "report",
}

// divingKeywords must appear in a result before we fetch its page.
var divingKeywords = []string{
	"diving", "dive", "scuba", "dive center", "diving center",
	"immersion", "subacque", "centro sub", "centro immersione",
	"plongée", "plongee", "centre de plongée",
	"buceo", "centro de buceo",
	"tauchen", "tauchzentrum", "tauchschule",
}

// newsKeywords disqualify a result even when a diving keyword matches.
var newsKeywords = []string{
	"news", "notizie", "giornale", "quotidiano", "articolo", "reporter",
	"report", "porti", "ormeggi", "turismo", "yacht", "barche", "navi",
	"epoca",
}

// suspiciousNameTokens mark extracted "wreck names" that are really
// navigation chrome, dates, or cookie banners.
var suspiciousNameTokens = []string{
	"leggi", "scopri", "prenota", "contatti", "contact", "news", "notizie",
	"ottobre", "novembre", "dicembre", "settembre", "agosto", "luglio",
	"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
	"pdf", "cookie", "privacy", "policy", "description", "descrizione",
	"gallery", "shop", "store", "cart", "login", "signup", "register",
	"2024", "2025", "facebook", "instagram", "linkedin", "twitter", "rss",
}

// wreckIndicators flag text that talks about a wreck at all, in the
// languages of the zones we serve.
var wreckIndicators = []string{
	"wreck", "shipwreck", "sunk", "sunken",
	"relitto", "naufragio", "affondata", "affondato",
	"épave", "naufrage", "coulé",
	"pecio", "hundido",
	"wrack", "schiffswrack", "versenkt",
	"ναυάγιο",
}

// DomainAllowed reports whether the domain may host dive site content:
// not a social/marketplace domain, not institutional, and either a
// trusted coastal TLD or an explicit dive keyword.
func DomainAllowed(domain string) bool {
	if domain == "" {
		return false
	}
	lower := strings.ToLower(domain)

	for _, kw := range excludedDomainKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, tld := range excludedTLDs {
		if strings.HasSuffix(lower, tld) {
			return false
		}
	}

	hasTrustedTLD := false
	for _, tld := range trustedTLDs {
		if strings.HasSuffix(lower, tld) {
			hasTrustedTLD = true
			break
		}
	}
	hasTrustedKeyword := false
	for _, kw := range trustedDomainKeywords {
		if strings.Contains(lower, kw) {
			hasTrustedKeyword = true
			break
		}
	}
	return hasTrustedTLD || hasTrustedKeyword
}

// isDivingCenterResult reports whether a search result looks like an
// actual diving center site rather than a news article about one.
func isDivingCenterResult(u, title, snippet string) bool {
	text := strings.ToLower(u + " " + title + " " + snippet)

	for _, excluded := range excludedContentDomains {
		if strings.Contains(text, excluded) {
			return false
		}
	}
	for _, kw := range newsKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	for _, kw := range divingKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isSuspiciousName rejects extracted names that are page chrome.
func isSuspiciousName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if len(lower) < 3 {
		return true
	}
	for _, token := range suspiciousNameTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// hasWreckIndicator reports whether the text mentions a wreck.
func hasWreckIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range wreckIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// semanticallyRelevant requires at least two of three topic categories
// (wreck, diving, marine) in the page sample before extraction runs.
func semanticallyRelevant(content string) bool {
	lower := strings.ToLower(content)

	categories := [][]string{
		{"wreck", "shipwreck", "relitto", "naufragio", "épave", "pecio", "wrack"},
		{"diving", "dive", "scuba", "immersion", "subacque", "plongée", "buceo", "tauchen"},
		{"marine", "marino", "marin", "meer", "mare"},
	}

	score := 0
	for _, cat := range categories {
		for _, kw := range cat {
			if strings.Contains(lower, kw) {
				score++
				break
			}
		}
	}
	return score >= 2
}
