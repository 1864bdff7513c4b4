package action

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinTitleLength drops fragments such as stray markers or "N/A".
	MinTitleLength = 5
	// MaxTitleLength is the longest title kept; longer text moves to the
	// description.
	MaxTitleLength = 120
)

// Candidate is one parsed recommendation before it becomes an Item.
type Candidate struct {
	Title       string
	Description string
}

var (
	bulletMarker = regexp.MustCompile(`^(?:[-*+•]|\d+[.)])\s+`)
	boldLead     = regexp.MustCompile(`^(?:\*\*|__)(.+?)(?:\*\*|__)(.*)$`)
	boldStripper = strings.NewReplacer("**", "", "__", "")
)

// ParseBullets splits a markdown section into candidates. When the section
// contains bullet or numbered lines only those count; otherwise every
// non-heading line does.
func ParseBullets(markdown string) []Candidate {
	var lines []string
	bulleted := false
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if bulletMarker.MatchString(line) {
			bulleted = true
		}
		lines = append(lines, line)
	}

	out := make([]Candidate, 0, len(lines))
	for _, line := range lines {
		if bulleted && !bulletMarker.MatchString(line) {
			continue
		}
		if c, ok := parseLine(bulletMarker.ReplaceAllString(line, "")); ok {
			out = append(out, c)
		}
	}
	return out
}

func parseLine(line string) (Candidate, bool) {
	var title, desc string
	if m := boldLead.FindStringSubmatch(line); m != nil {
		head, rest := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		switch {
		case strings.HasSuffix(head, ":") && rest != "":
			title, desc = strings.TrimSuffix(head, ":"), rest
		case strings.HasPrefix(rest, ":"), strings.HasPrefix(rest, "- "), strings.HasPrefix(rest, "– "):
			title = head
			desc = strings.TrimSpace(strings.TrimLeft(rest, ":-– "))
		}
	}
	if title == "" {
		title = line
	}
	title = clean(title)
	desc = clean(desc)

	// A short bold label such as "SMC:" keeps its detail in the title.
	if desc != "" && utf8.RuneCountInString(title) < MinTitleLength {
		title, desc = title+": "+desc, ""
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return Candidate{}, false
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		full := title
		if desc != "" {
			full += ": " + desc
		}
		title, desc = truncate(title, MaxTitleLength), full
	}
	return Candidate{Title: title, Description: desc}, true
}

func clean(s string) string {
	return strings.Join(strings.Fields(boldStripper.Replace(s)), " ")
}

// truncate shortens s to at most max runes, cutting at a word boundary when
// one falls in the second half, and appends an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := runes[:max-1]
	if i := strings.LastIndex(string(cut), " "); i > 0 && utf8.RuneCountInString(string(cut)[:i]) > max/2 {
		return strings.TrimRight(string(cut)[:i], " ,;:.") + "…"
	}
	return string(cut) + "…"
}
