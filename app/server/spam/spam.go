// Package spam 根据留言内容判断是否为垃圾留言。
//
// 规则之间是“或”的关系，任意一条命中即视为垃圾留言，不做打分。
package spam

import (
	"strings"
	"unicode/utf8"
)

const (
	MinMessageLength    = 10
	URLMessageMaxLength = 50
	MinNameLength       = 2
)

// DeniedEmailSubstrings 命中任意一项的发件邮箱会被标记
var DeniedEmailSubstrings = []string{"spam"}

type Rule string

const (
	RuleShortMessage Rule = "short_message"
	RuleShortLink    Rule = "short_message_with_link"
	RuleDeniedEmail  Rule = "denied_email"
	RuleShortName    Rule = "short_name"
)

type Submission struct {
	Name    string
	Email   string
	Message string
}

type Verdict struct {
	IsSpam  bool
	Reasons []Rule
}

func Check(s Submission) Verdict {
	var reasons []Rule

	messageLen := utf8.RuneCountInString(strings.TrimSpace(s.Message))
	if messageLen < MinMessageLength {
		reasons = append(reasons, RuleShortMessage)
	}
	if containsLink(s.Message) && messageLen < URLMessageMaxLength {
		reasons = append(reasons, RuleShortLink)
	}

	email := strings.ToLower(s.Email)
	for _, denied := range DeniedEmailSubstrings {
		if strings.Contains(email, denied) {
			reasons = append(reasons, RuleDeniedEmail)
			break
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(s.Name)) < MinNameLength {
		reasons = append(reasons, RuleShortName)
	}

	return Verdict{
		IsSpam:  len(reasons) > 0,
		Reasons: reasons,
	}
}

func containsLink(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "http://") || strings.Contains(lower, "https://")
}
