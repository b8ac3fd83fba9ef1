package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hrefPattern        = regexp.MustCompile(`href\s*=\s*"([^"]*)"`)
	uploadsPathPattern = regexp.MustCompile(`^.*?/wp-content/uploads/(.+)$`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern       = regexp.MustCompile(`^[+]?[1-9]\d{0,15}$`)
	phoneStripPattern  = regexp.MustCompile(`[\s\-()]`)
)

// linkRule rewrites a single href value. It returns the new value, a reason
// when the value changed, and an optional warning.
type linkRule func(href, baseURL string) (string, string, string)

// linkRules run in order; each rule sees the output of the previous one.
var linkRules = []linkRule{
	absolutizeRootRelative,
	rewriteUploads,
	neutralizeAdminLinks,
	validateMailto,
	validateTel,
}

// FixLinks applies the link repair rules to every double-quoted href in html.
func FixLinks(html, baseURL string) (string, []LinkFix, []string) {
	fixes := []LinkFix{}
	warnings := []string{}

	out := hrefPattern.ReplaceAllStringFunc(html, func(attr string) string {
		original := hrefPattern.FindStringSubmatch(attr)[1]
		current := original
		for _, rule := range linkRules {
			next, reason, warning := rule(current, baseURL)
			if warning != "" {
				warnings = append(warnings, warning)
			}
			if next != current {
				fixes = append(fixes, LinkFix{Original: current, Fixed: next, Reason: reason})
				current = next
			}
		}
		return `href="` + current + `"`
	})
	return out, fixes, warnings
}

func absolutizeRootRelative(href, baseURL string) (string, string, string) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" || !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return href, "", ""
	}
	return base + href, "absolutized root-relative link", ""
}

func rewriteUploads(href, _ string) (string, string, string) {
	match := uploadsPathPattern.FindStringSubmatch(href)
	if match == nil {
		return href, "", ""
	}
	return "/images/" + match[1], "rewrote WordPress upload path", ""
}

func neutralizeAdminLinks(href, _ string) (string, string, string) {
	if !strings.Contains(href, "wp-admin") && !strings.Contains(href, "wp-login") {
		return href, "", ""
	}
	return "#", "removed WordPress admin link", fmt.Sprintf("Removed WordPress admin link: %s", href)
}

func validateMailto(href, _ string) (string, string, string) {
	if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return href, "", ""
	}
	address := href[len("mailto:"):]
	if i := strings.Index(address, "?"); i >= 0 {
		address = address[:i]
	}
	if emailPattern.MatchString(address) {
		return href, "", ""
	}
	return "#", "invalid mailto address", fmt.Sprintf("Invalid email address in mailto link: %s", address)
}

func validateTel(href, _ string) (string, string, string) {
	if !strings.HasPrefix(strings.ToLower(href), "tel:") {
		return href, "", ""
	}
	number := href[len("tel:"):]
	if phonePattern.MatchString(phoneStripPattern.ReplaceAllString(number, "")) {
		return href, "", ""
	}
	return "#", "invalid tel number", fmt.Sprintf("Invalid phone number in tel link: %s", number)
}
