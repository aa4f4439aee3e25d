package narrative

import (
	"regexp"
	"strings"
)

var (
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	boldHeadingRe     = regexp.MustCompile(`^\*\*(.+?)\*\*:?$`)
	numberedItemRe    = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	bulletItemRe      = regexp.MustCompile(`^[-*•]\s+(.+)$`)
)

// HeadingStructurer 按标题行切分点评文本
// 支持 "# 标题" 与独占一行的 "**标题**"；编号行与列表行作为条目，其余行归入引言或上一条目
type HeadingStructurer struct{}

// NewHeadingStructurer 创建分节器
func NewHeadingStructurer() *HeadingStructurer {
	return &HeadingStructurer{}
}

// Structure 分节
func (HeadingStructurer) Structure(text string) (*Feedback, error) {
	fb := &Feedback{Raw: text, Sections: []Section{}}

	var cur *Section
	lastWasItem := false
	flush := func() {
		if cur != nil && (cur.Title != "" || cur.Intro != "" || len(cur.Items) > 0) {
			fb.Sections = append(fb.Sections, *cur)
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			lastWasItem = false
			continue
		}

		if title, ok := headingTitle(line); ok {
			flush()
			cur = &Section{Title: title, Items: []string{}}
			lastWasItem = false
			continue
		}

		if cur == nil {
			cur = &Section{Items: []string{}}
		}

		if m := numberedItemRe.FindStringSubmatch(line); m != nil {
			cur.Items = append(cur.Items, cleanInline(m[1]))
			lastWasItem = true
			continue
		}
		if m := bulletItemRe.FindStringSubmatch(line); m != nil {
			cur.Items = append(cur.Items, cleanInline(m[1]))
			lastWasItem = true
			continue
		}

		// 续行
		if lastWasItem && len(cur.Items) > 0 {
			cur.Items[len(cur.Items)-1] += " " + cleanInline(line)
			continue
		}
		if cur.Intro == "" {
			cur.Intro = cleanInline(line)
		} else {
			cur.Intro += " " + cleanInline(line)
		}
	}
	flush()

	return fb, nil
}

func headingTitle(line string) (string, bool) {
	if m := markdownHeadingRe.FindStringSubmatch(line); m != nil {
		return cleanInline(m[1]), true
	}
	if m := boldHeadingRe.FindStringSubmatch(line); m != nil {
		return cleanInline(m[1]), true
	}
	return "", false
}

// cleanInline 去掉行内强调标记
func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}
