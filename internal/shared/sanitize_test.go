package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	require.Equal(t, "", SanitizeText(nil))
	require.Equal(t, "hello", SanitizeText("  hello  "))
	require.Equal(t, "3", SanitizeText(float64(3)))
	require.Equal(t, "3.5", SanitizeText(3.5))
	require.Equal(t, "true", SanitizeText(true))
}

func TestValidateRequiredReportsAllMissing(t *testing.T) {
	err := ValidateRequired(map[string]string{
		"title":    "",
		"due_date": "   ",
		"body":     "present",
	}, []string{"title", "due_date", "body"})

	ve, ok := AsValidation(err)
	require.True(t, ok)
	require.Equal(t, []string{"title", "due_date"}, ve.Fields)

	require.NoError(t, ValidateRequired(map[string]string{"title": "x"}, []string{"title"}))
}

func TestValidateEmail(t *testing.T) {
	email, err := ValidateEmail("  user@example.com ")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", email)

	for _, bad := range []string{"", "not-an-email", "a@", "@b.com"} {
		_, err := ValidateEmail(bad)
		ve, ok := AsValidation(err)
		require.True(t, ok, "input %q", bad)
		require.Equal(t, []string{"email"}, ve.Fields)
	}
}

func TestCoercePositiveInt(t *testing.T) {
	n, err := CoercePositiveInt(float64(12))
	require.NoError(t, err)
	require.Equal(t, int64(12), n)

	n, err = CoercePositiveInt(" 42 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), n)

	for _, bad := range []any{0, -5, float64(1.5), "abc", "", nil, true} {
		_, err := CoercePositiveInt(bad)
		_, ok := AsValidation(err)
		require.True(t, ok, "input %v", bad)
	}
}
