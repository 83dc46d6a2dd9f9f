package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/validate"
)

// RunValidate checks an equation against the input allow-list and prints
// the verdict. The returned error is the rejection, if any.
func RunValidate(w io.Writer, profile termenv.Profile, equation string, maxInput int) error {
	text, err := validate.Sanitize(equation, maxInput)
	if err == nil {
		_, err = validate.Validate(text)
	}
	fmt.Fprintln(w, tui.Verdict(profile, text, err))
	return err
}
