// Package customizer holds the rules a custom-text product must satisfy before it can be added to a cart.
package customizer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Rule string

const (
	RuleTextRequired Rule = "text_required"
	RuleMaxChars     Rule = "max_chars"
	RuleMaxWords     Rule = "max_words"
	RuleMinQuantity  Rule = "min_quantity"
)

type Rules struct {
	MaxChars    int
	MaxWords    int
	MinQuantity int
}

type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// ValidationErrors lists every rule a submission broke.
type ValidationErrors []Violation

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether rule is among the violations.
func (v ValidationErrors) Has(rule Rule) bool {
	for _, violation := range v {
		if violation.Rule == rule {
			return true
		}
	}
	return false
}

// Validate re-checks every rule at submit time. It returns nil or a ValidationErrors.
func (r Rules) Validate(text string, quantity int) error {
	var errs ValidationErrors

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		errs = append(errs, Violation{RuleTextRequired, "Please enter your custom text"})
	}
	if utf8.RuneCountInString(trimmed) > r.MaxChars {
		errs = append(errs, Violation{RuleMaxChars, fmt.Sprintf("Custom text cannot exceed %d characters", r.MaxChars)})
	}
	if WordCount(trimmed) > r.MaxWords {
		errs = append(errs, Violation{RuleMaxWords, fmt.Sprintf("Custom text cannot exceed %d words", r.MaxWords)})
	}
	if quantity < r.MinQuantity {
		errs = append(errs, Violation{RuleMinQuantity, fmt.Sprintf("Minimum order quantity is %d", r.MinQuantity)})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// AcceptText is the on-change check: false means the new value must not replace the old one.
func (r Rules) AcceptText(text string) bool {
	return utf8.RuneCountInString(text) <= r.MaxChars && WordCount(text) <= r.MaxWords
}

// WordCount splits on whitespace and ignores empty tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
