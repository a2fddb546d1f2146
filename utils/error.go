package utils

import (
	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential runs every function in order and returns all failures
// combined. Later functions still run after an earlier one fails.
func ErrExecSequential(functions ...func() error) error {
	var multErr error
	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}
	return multErr
}
