package sanitize

import "regexp"

// Go's RE2 has no backreferences, so each element gets its own pattern.
var emptyElementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<p(\s[^>]*)?>\s*(<br\s*/?>)?\s*</p>`),
	regexp.MustCompile(`<div(\s[^>]*)?>\s*</div>`),
	regexp.MustCompile(`<span(\s[^>]*)?>\s*</span>`),
	regexp.MustCompile(`<h1(\s[^>]*)?>\s*</h1>`),
	regexp.MustCompile(`<h2(\s[^>]*)?>\s*</h2>`),
	regexp.MustCompile(`<h3(\s[^>]*)?>\s*</h3>`),
	regexp.MustCompile(`<h4(\s[^>]*)?>\s*</h4>`),
	regexp.MustCompile(`<h5(\s[^>]*)?>\s*</h5>`),
	regexp.MustCompile(`<h6(\s[^>]*)?>\s*</h6>`),
	regexp.MustCompile(`<li(\s[^>]*)?>\s*</li>`),
	regexp.MustCompile(`<ul(\s[^>]*)?>\s*</ul>`),
	regexp.MustCompile(`<ol(\s[^>]*)?>\s*</ol>`),
}

// RemoveEmptyElements deletes elements whose matching open and close tags
// hold nothing but whitespace (or a lone <br> inside a paragraph). Removal
// repeats until nothing changes so nested empties such as <div><p></p></div>
// disappear too.
func RemoveEmptyElements(html string) string {
	for {
		next := html
		for _, pattern := range emptyElementPatterns {
			next = pattern.ReplaceAllString(next, "")
		}
		if next == html {
			return next
		}
		html = next
	}
}
