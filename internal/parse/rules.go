package parse

import (
	"regexp"
	"strings"
)

// Cue patterns are literal, testable lists per category. The score is a
// coverage heuristic: a category contributes its weight once no matter
// how many of its patterns match.
var (
	datePatterns = compilePatterns(
		"오늘",
		"내일",
		"모레",
		"이번주",
		"이번 주",
		"이번달",
		"이번 달",
		"다음주",
		"다음 주",
		"다음달",
		"다음 달",
		`\b(today|tomorrow|next week|next month)\b`,
	)

	timePatterns = compilePatterns(
		`(\d{1,2})시(\d{1,2}분)?`,
		`(\d{1,2}):(\d{2})`,
		`오전\s*\d{1,2}시`,
		`오후\s*\d{1,2}시`,
		`\b(am|pm)\s*\d{1,2}(:\d{2})?`,
	)

	verbPatterns = compilePatterns(
		"확인",
		"검토",
		"보내",
		"답장",
		"신청",
		"제출",
		"request",
		"review",
		"reply",
		"submit",
	)

	deadlinePatterns = compilePatterns(
		"마감",
		"까지",
		"due",
		"deadline",
	)
)

const (
	dateWeight     = 0.4
	timeWeight     = 0.2
	verbWeight     = 0.3
	deadlineWeight = 0.1
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile("(?i)"+p))
	}
	return out
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Score computes the actionability score in [0,1] from cue-category
// coverage: date 0.4, time 0.2, action verb 0.3, deadline 0.1.
func Score(text string) float64 {
	normalized := strings.ToLower(text)

	score := 0.0
	if anyMatch(datePatterns, normalized) {
		score += dateWeight
	}
	if anyMatch(timePatterns, normalized) {
		score += timeWeight
	}
	if anyMatch(verbPatterns, normalized) {
		score += verbWeight
	}
	if anyMatch(deadlinePatterns, normalized) {
		score += deadlineWeight
	}
	return score
}
