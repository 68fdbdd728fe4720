package probe

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Candidate-name extraction patterns. The JS patterns mirror how
// frontend code usually touches request parameters; the URL pattern
// catches query names in links embedded in the page.
var (
	jsPropertyRe = regexp.MustCompile(`(?:params|query|data|body|payload|request)\s*\.\s*([a-zA-Z_][a-zA-Z0-9_]*)`)
	jsLookupRe   = regexp.MustCompile(`(?:params|query|data|body|payload|request)\s*\[\s*["']([^"']+)["']\s*\]`)
	jsSearchRe   = regexp.MustCompile(`(?:searchParams|urlParams|params)\s*\.(?:get|set|append|has)\s*\(\s*["']([^"']+)["']\s*\)`)
	urlQueryRe   = regexp.MustCompile(`[?&]([a-zA-Z_][a-zA-Z0-9_\-]*)=`)

	// Error pages frequently name the parameter they wanted.
	missingParamRe  = regexp.MustCompile(`(?i)(?:parameter|param|field|argument)\s+["']?([a-zA-Z_][a-zA-Z0-9_\-]*)["']?\s+(?:is\s+)?(?:missing|required|expected|invalid)`)
	missingPrefixRe = regexp.MustCompile(`(?i)(?:missing|unknown|required)\s+(?:parameter|param|field|argument)\s*[:=]?\s*["']?([a-zA-Z_][a-zA-Z0-9_\-]*)["']?`)
)

// PossibleParameters produces candidate parameter names inferred from
// the body: HTML form controls, JavaScript parameter access patterns,
// and query names in embedded URLs. Order is stable (forms first) and
// names are deduplicated.
func (r *Response) PossibleParameters() []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, n := range formControlNames(r.Text) {
		add(n)
	}
	for _, re := range []*regexp.Regexp{jsPropertyRe, jsLookupRe, jsSearchRe, urlQueryRe} {
		for _, m := range re.FindAllStringSubmatch(r.Text, -1) {
			if len(m) > 1 {
				add(m[1])
			}
		}
	}
	return names
}

// formControlNames walks the body as HTML and collects the name
// attribute of every input, select and textarea element. A tokenizer
// pass tolerates the malformed markup real pages ship.
func formControlNames(text string) []string {
	var names []string
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return names
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tag, hasAttr := z.TagName()
		switch string(tag) {
		case "input", "select", "textarea":
		default:
			continue
		}
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			if string(key) == "name" && len(val) > 0 {
				names = append(names, string(val))
			}
		}
	}
}

// detectAdditionalParameter returns a parameter name the body itself
// reveals (e.g. `parameter "order" is required`), unless it is one the
// request already injected.
func detectAdditionalParameter(text string, injected []Param) string {
	own := make(map[string]struct{}, len(injected))
	for _, p := range injected {
		own[p.Name] = struct{}{}
	}
	for _, re := range []*regexp.Regexp{missingParamRe, missingPrefixRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				if _, dup := own[m[1]]; !dup {
					return m[1]
				}
			}
		}
	}
	return ""
}
