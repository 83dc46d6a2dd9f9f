package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/validate"
)

func TestValidate_Accepts(t *testing.T) {
	inputs := []string{
		"x+y",
		"2*x",
		"sin(x)",
		"x/y",
		"x - y",
		"exp(x) * log(y)",
		"cos(sin(x))",
		"(x + 1.5) / (y - .5)",
		"9**9**9**9**9**9",
		"x***y",
		"sin(x) cos(y)",
		"x\t+\ty",
		"",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			text, err := validate.Validate(in)
			require.NoError(t, err)
			assert.Equal(t, in, text.String())
		})
	}
}

func TestValidate_RejectsAdjacentVariables(t *testing.T) {
	for _, in := range []string{"xy", "x y", "yx", "x   x", "2*x y", "sin(x y)", "x\ty"} {
		t.Run(in, func(t *testing.T) {
			_, err := validate.Validate(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			var inputErr *domain.InvalidInputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, in, inputErr.Input)
			assert.Contains(t, inputErr.Reason, "separated by an operator")
		})
	}
}

func TestValidate_RejectsForeignCharacters(t *testing.T) {
	inputs := []string{
		"z+1",
		"__import__('os')",
		"tan(x)",
		"sin (x)",
		"x^2",
		"1e5",
		"x,y",
		"x+y\n",
		"sqrt(x)",
		"lambda: 1",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := validate.Validate(in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidate_FunctionNamesAreNotAdjacentVariables(t *testing.T) {
	// The x inside "exp" sits between letters that are not variables.
	for _, in := range []string{"exp(x)", "y*exp(y)", "exp(exp(x))", "x*exp(x)"} {
		_, err := validate.Validate(in)
		assert.NoError(t, err, in)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain", "x+y", "x+y"},
		{"Trims", "  x + y \r\n", "x + y"},
		{"Keeps Tabs", "x\t+\ty", "x\t+\ty"},
		{"Drops ANSI", "\x1b[31mx\x1b[0m", "[31mx[0m"},
		{"Drops NUL", "x\x00+y", "x+y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validate.Sanitize(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitize_Limits(t *testing.T) {
	_, err := validate.Sanitize(strings.Repeat("1", 11), 10)
	assert.ErrorIs(t, err, validate.ErrInputTooLarge)

	_, err = validate.Sanitize(strings.Repeat("1", 10), 10)
	assert.NoError(t, err)

	_, err = validate.Sanitize("\xbd\xb2", 0)
	assert.ErrorIs(t, err, validate.ErrInvalidUTF8)
}

func TestSanitize_EnvOverride(t *testing.T) {
	t.Setenv(validate.EnvMaxInputSize, "5")
	assert.Equal(t, 5, validate.MaxInputSize())

	_, err := validate.Sanitize("x+y+1", 0)
	assert.NoError(t, err)
	_, err = validate.Sanitize("x+y+12", 0)
	assert.ErrorIs(t, err, validate.ErrInputTooLarge)
}
