package budget

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrEmptyCategory     = errors.New("category is required")
	ErrNegativeAmount    = errors.New("amount cannot be negative")

	// ErrStructural rejects a command that would break the tree shape.
	ErrStructural = errors.New("structural violation")
	// ErrNotFound rejects a command whose path no longer resolves.
	ErrNotFound = errors.New("path not found")
)

// ValidationError is a rejection the user has to act on, such as a
// duplicate name. Nothing was applied.
type ValidationError struct {
	Section  Section
	Category string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Section, e.Category, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err should be shown to the user.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNoop reports whether err is a silent rejection: the command could not
// apply to the current tree and left it untouched.
func IsNoop(err error) bool {
	return errors.Is(err, ErrStructural) || errors.Is(err, ErrNotFound)
}

func structural(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrStructural}, args...)...)
}

func notFound(s Section, p Path) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, s, p)
}
