package websearch

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"periplo/pkg/geo"
)

// properName matches a capitalized word sequence up to three words,
// allowing codes like "U-455".
const properName = `([A-Z][a-zA-Z0-9-]+(?:\s+[A-Z][a-zA-Z0-9-]+){0,2})`

// wreckKeyword covers the languages our zones speak.
const wreckKeyword = `(?i:relitto|wreck|shipwreck|naufragio|épave|naufrage|pecio|wrack|schiffswrack)`

// namePatterns are tried in order; diving center pages list wrecks as
// "Relitto del Haven", "Haven wreck", "Haven - 45m", or plain bullets.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(wreckKeyword + `\s+(?i:del|della|dell'|di|of|the|de|du|des|el|la|los|das|die|der)\s+` + properName),
	regexp.MustCompile(wreckKeyword + `\s+` + properName),
	regexp.MustCompile(properName + `\s+` + wreckKeyword),
	regexp.MustCompile(properName + `\s*[-–—]\s*\d+\s*(?:m|metri|meters|ft|feet)\b`),
}

// genericNameWords are capitalized words the patterns match that are
// never wreck names.
var genericNameWords = map[string]bool{
	"Il": true, "La": true, "Lo": true, "Del": true, "Della": true,
	"Home": true, "Centro": true, "Sub": true, "The": true, "Of": true,
	"Center": true, "Diving": true, "Dive": true, "News": true,
	"Genova": true, "Liguria": true, "Italia": true, "Portofino": true,
	"Rapallo": true, "Camogli": true, "Chiavari": true, "Santa": true,
	"Margherita": true, "Ligure": true, "Yacht": true, "Turismo": true,
	"Nave": true, "Piroscafo": true, "Immersione": true, "Immersioni": true,
}

// wreckPrefixes must be followed by a proper name or a code.
var wreckPrefixes = map[string]bool{
	"relitto": true, "wreck": true, "shipwreck": true, "naufragio": true,
	"épave": true, "naufrage": true, "pecio": true, "wrack": true,
	"schiffswrack": true, "piroscafo": true, "nave": true, "ship": true,
	"submarine": true, "sottomarino": true, "cargo": true, "tanker": true,
	"petroliera": true, "motonave": true, "vapore": true, "steamer": true,
}

var prepositions = map[string]bool{
	"del": true, "della": true, "dell": true, "di": true, "de": true,
	"du": true, "des": true, "el": true, "la": true, "los": true,
	"das": true, "die": true, "der": true, "of": true, "the": true,
	"le": true, "les": true,
}

// PageText strips tags, scripts, navigation, and footers from a page.
func PageText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Header:
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}

// WreckNames extracts candidate wreck names from page text, capped at
// five per page. Pattern extraction first, HTML list items as fallback.
func WreckNames(content string) []string {
	text := PageText(content)

	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if !validWreckName(name) || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, pattern := range namePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}

	if len(names) == 0 {
		for _, item := range listItems(content) {
			if !hasWreckIndicator(item) {
				continue
			}
			name := regexp.MustCompile(`[-–—(]`).Split(item, 2)[0]
			add(name)
		}
	}

	if len(names) > 5 {
		names = names[:5]
	}
	return names
}

// validWreckName applies the name quality rules: capitalized, 4 to 50
// chars, at most 3 words, no URLs, not generic chrome, and wreck
// prefixes must be followed by a proper name or code.
func validWreckName(name string) bool {
	if len(name) < 4 || len(name) > 50 {
		return false
	}
	if isSuspiciousName(name) {
		return false
	}
	if strings.ContainsAny(name, `/\@#%`) || strings.HasPrefix(strings.ToLower(name), "http") {
		return false
	}

	words := strings.Fields(name)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	if !startsUpper(words[0]) {
		return false
	}

	nonGeneric := 0
	for _, w := range words {
		if !genericNameWords[w] {
			nonGeneric++
		}
	}
	if nonGeneric == 0 {
		return false
	}

	if wreckPrefixes[strings.ToLower(words[0])] {
		// Skip prepositions to find the actual name.
		i := 1
		for i < len(words) && prepositions[strings.ToLower(words[i])] {
			i++
		}
		if i >= len(words) {
			return false
		}
		next := words[i]
		isCode := strings.ContainsAny(next, "0123456789")
		if !startsUpper(next) && !isCode {
			return false
		}
	}
	return true
}

// startsUpper reports whether the first rune is an uppercase letter.
// Names like "Épave" open with a multi-byte rune, so byte indexing
// would misjudge them.
func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// listItems returns the text of <li> elements, for diving centers that
// publish their sites as a plain list.
func listItems(content string) []string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var items []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				items = append(items, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return items
}

var coordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)lat(?:itude)?\s*[:=]\s*(\d+\.\d+).*?l(?:o)?ng(?:itude)?\s*[:=]\s*(\d+\.\d+)`),
	regexp.MustCompile(`(?i)GPS\s*[:=]\s*(\d+\.\d+)[,\s]+(\d+\.\d+)`),
	regexp.MustCompile(`(?i)coordinat[ae]\w*\s*[:=]\s*(\d+\.\d+)[,\s]+(\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+)\s*°?[,\s]\s*(\d+\.\d+)`),
}

// ExtractCoordinates finds the first coordinate pair in the text that
// falls inside the bounding box.
func ExtractCoordinates(content string, bbox geo.BoundingBox) (lat, lng float64, ok bool) {
	for _, pattern := range coordPatterns {
		for _, m := range pattern.FindAllStringSubmatch(content, -1) {
			la, err1 := strconv.ParseFloat(m[1], 64)
			ln, err2 := strconv.ParseFloat(m[2], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			if la < -90 || la > 90 || ln < -180 || ln > 180 {
				continue
			}
			if bbox.Contains(geo.Point{Lat: la, Lng: ln}) {
				return la, ln, true
			}
		}
	}
	return 0, 0, false
}

// CoordinatesNear looks for coordinates within a window around the
// wreck name in the page text.
func CoordinatesNear(content, name string, bbox geo.BoundingBox) (lat, lng float64, ok bool) {
	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(name))
	if pos < 0 {
		return 0, 0, false
	}
	start := pos - 150
	if start < 0 {
		start = 0
	}
	end := pos + 300
	if end > len(content) {
		end = len(content)
	}
	return ExtractCoordinates(content[start:end], bbox)
}

var depthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:profondit[àa]|depth)\s*[:=]?\s*(\d+)\s*(m|metri|meters|metres|ft|feet)?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*(m|metri|meters|metres|ft|feet)\b`),
}

// DepthNear extracts a depth in meters mentioned near the wreck name.
// Feet are converted.
func DepthNear(content, name string) (float64, bool) {
	lower := strings.ToLower(content)
	pos := strings.Index(lower, strings.ToLower(name))
	if pos < 0 {
		return 0, false
	}
	start := pos - 100
	if start < 0 {
		start = 0
	}
	end := pos + 200
	if end > len(content) {
		end = len(content)
	}
	window := content[start:end]

	for _, pattern := range depthPatterns {
		m := pattern.FindStringSubmatch(window)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if unit := strings.ToLower(m[2]); strings.HasPrefix(unit, "f") {
			v *= 0.3048
		}
		if v > 0 && v < 500 {
			return v, true
		}
	}
	return 0, false
}

// DescriptionFor assembles a short description for a wreck from the
// sentences mentioning it.
func DescriptionFor(content, name string) string {
	text := PageText(content)

	var relevant []string
	for _, sentence := range strings.Split(text, ".") {
		s := strings.TrimSpace(sentence)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		if strings.Contains(lower, strings.ToLower(name)) && hasWreckIndicator(lower) {
			relevant = append(relevant, s)
			if len(relevant) == 3 {
				break
			}
		}
	}

	if len(relevant) == 0 {
		return "Wreck " + name + " in the area."
	}
	desc := strings.Join(relevant, ". ")
	if len(desc) > 500 {
		desc = desc[:500]
	}
	return desc
}
