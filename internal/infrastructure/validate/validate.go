package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validator is a function that validates a string and returns an error if invalid
type Validator func(value string) error

// Compose chains multiple validators — first error wins
func Compose(validators ...Validator) Validator {
	return func(value string) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// Required ensures the field is not empty
func Required() Validator {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("this field is required")
		}
		return nil
	}
}

// MinLength checks minimum length
func MinLength(min int) Validator {
	return func(v string) error {
		if len(v) < min {
			return fmt.Errorf("must be at least %d characters", min)
		}
		return nil
	}
}

// MaxLength checks maximum length
func MaxLength(max int) Validator {
	return func(v string) error {
		if len(v) > max {
			return fmt.Errorf("must be no more than %d characters", max)
		}
		return nil
	}
}

// Length checks exact length
func Length(exact int) Validator {
	return func(v string) error {
		if len(v) != exact {
			return fmt.Errorf("must be exactly %d characters", exact)
		}
		return nil
	}
}

// DigitsOnly ensures string contains only digits
func DigitsOnly() Validator {
	return func(v string) error {
		if v == "" {
			return nil // let Required handle empty
		}
		for _, c := range v {
			if !unicode.IsDigit(c) {
				return fmt.Errorf("must contain only digits")
			}
		}
		return nil
	}
}

// Matches checks if value matches a regex (with a custom message)
func Matches(pattern, message string) Validator {
	re := regexp.MustCompile(pattern)
	return func(v string) error {
		if !re.MatchString(v) {
			if message != "" {
				return fmt.Errorf("%s", message)
			}
			return fmt.Errorf("invalid format")
		}
		return nil
	}
}
