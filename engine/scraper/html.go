package scraper

import (
	"html"
	"regexp"
	"strings"
)

// minParagraphChars filters out navigation crumbs and photo captions.
const minParagraphChars = 50

var (
	noiseTags = []string{"script", "style", "nav", "footer", "header", "aside", "iframe"}

	noiseRE = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(noiseTags))
		for i, tag := range noiseTags {
			out[i] = regexp.MustCompile(`(?is)<` + tag + `\b[^>]*>.*?</` + tag + `>`)
		}
		return out
	}()

	articleRE   = regexp.MustCompile(`(?is)<article\b[^>]*>(.*)</article>`)
	mainRE      = regexp.MustCompile(`(?is)<main\b[^>]*>(.*)</main>`)
	bodyRE      = regexp.MustCompile(`(?is)<body\b[^>]*>(.*)</body>`)
	paragraphRE = regexp.MustCompile(`(?is)<p\b[^>]*>(.*?)</p>`)
	tagRE       = regexp.MustCompile(`<[^>]+>`)
)

// mainContent narrows a page to its article body, preferring semantic
// containers over the full document.
func mainContent(page string) string {
	for _, re := range noiseRE {
		page = re.ReplaceAllString(page, " ")
	}
	for _, re := range []*regexp.Regexp{articleRE, mainRE, bodyRE} {
		if m := re.FindStringSubmatch(page); m != nil {
			return m[1]
		}
	}
	return page
}

// paragraphs extracts the substantial text paragraphs from an HTML
// fragment.
func paragraphs(content string) []string {
	var out []string
	for _, m := range paragraphRE.FindAllStringSubmatch(content, -1) {
		text := tagRE.ReplaceAllString(m[1], " ")
		text = html.UnescapeString(text)
		text = strings.Join(strings.Fields(text), " ")
		if len(text) > minParagraphChars {
			out = append(out, text)
		}
	}
	return out
}
