package shared

import "fmt"

// Describe formats err for the user. In verbose mode socket errors include
// the stack of the failing call.
func Describe(err error, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}
