package validate

import (
	"fmt"
	"regexp"

	"github.com/aretw0/quiver/pkg/domain"
)

var (
	shapePattern    = regexp.MustCompile(`\A(?:[xy0-9.+\-*/() \t]|sin\(|cos\(|exp\(|log\()*\z`)
	adjacentPattern = regexp.MustCompile(`[xy][ \t]*[xy]`)
)

// Text is expression text that passed Validate.
// The zero value is the empty expression and never comes out of Validate for a rejected input.
type Text struct {
	s string
}

// String returns the validated text.
func (t Text) String() string { return t.s }

// Validate checks text against the allow-list and the adjacency rule.
// Failures are *domain.InvalidInputError values matching domain.ErrInvalidInput.
func Validate(text string) (Text, error) {
	if !shapePattern.MatchString(text) {
		return Text{}, &domain.InvalidInputError{
			Input:  text,
			Reason: "only x, y, digits, '.', whitespace, + - * /, parentheses and sin( cos( exp( log( are allowed",
		}
	}
	if loc := adjacentPattern.FindStringIndex(text); loc != nil {
		return Text{}, &domain.InvalidInputError{
			Input:  text,
			Reason: fmt.Sprintf("variables in %q must be separated by an operator", text[loc[0]:loc[1]]),
		}
	}
	return Text{s: text}, nil
}

// Unchecked wraps text without running the checks.
// It is reserved for trusted callers that disabled validation explicitly.
func Unchecked(text string) Text {
	return Text{s: text}
}
