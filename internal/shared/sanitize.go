package shared

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// SanitizeText normalizes an untyped payload value into a trimmed string.
// Absent or null values become the empty string. No HTML escaping happens
// here; rendering is the caller's concern and storage always uses parameter
// binding.
func SanitizeText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers decode as float64; keep integral values compact.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// ValidateRequired fails listing every missing or empty field at once, not
// just the first.
func ValidateRequired(record map[string]string, required []string) error {
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(record[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return NewValidationError(missing...)
	}
	return nil
}

// ValidateEmail returns the trimmed address or a ValidationError.
func ValidateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return "", NewValidationError("email")
	}
	return email, nil
}

// CoercePositiveInt converts an untyped payload value into a positive
// integer identifier. Zero and negative values are invalid.
func CoercePositiveInt(raw any) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, NewValidationError("id")
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, NewValidationError("id")
		}
		n = parsed
	default:
		return 0, NewValidationError("id")
	}
	if n <= 0 {
		return 0, NewValidationError("id")
	}
	return n, nil
}
