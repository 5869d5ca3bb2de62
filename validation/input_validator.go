// Package validation inspects user supplied query values before they are
// forwarded to the openFDA API.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/giygas/openfda-gateway/interfaces"
)

const (
	maxInputLength = 200
	// MaxLimit is the largest page openFDA serves for one request
	MaxLimit = 1000
)

// Markup and injection fragments that have no business in a drug or
// company name. Lowercase; matched with strings.Contains.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
	"onclick=", "onmouseover=", "<iframe", "<img", "<svg",
	"eval(", "expression(",
	"../", "..\\", "file://",
	"&search=", "&limit=", "&skip=", "&count=",
}

// Compile-time check
var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// InputValidatorImpl implements interfaces.InputValidator
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateInput flags search terms that are too long, contain control
// characters, or look like markup or an attempt to extend the upstream query
func (v *InputValidatorImpl) ValidateInput(input string) error {
	if input == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: %d characters (max %d)", len(input), maxInputLength)
	}

	for _, r := range input {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("input contains control characters")
		}
	}

	lower := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains suspicious pattern %q", pattern)
		}
	}

	// A quote closes the search term early
	if strings.Contains(input, `"`) {
		return fmt.Errorf("input contains a double quote")
	}

	return nil
}

// ValidateLimit checks that limit is an integer between 1 and MaxLimit
func (v *InputValidatorImpl) ValidateLimit(limit string) error {
	n, err := strconv.Atoi(limit)
	if err != nil {
		return fmt.Errorf("limit must be a number, got %q", limit)
	}
	if n < 1 || n > MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", MaxLimit, n)
	}
	return nil
}
