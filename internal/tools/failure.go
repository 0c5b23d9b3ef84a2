package tools

import "fmt"

// Failure is an error whose message is shown to the invoking user as is.
type Failure struct {
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func Failf(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}
