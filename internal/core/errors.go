package core

import "errors"

var (
	// ErrBankUnavailable means the template bank could not be read or parsed.
	// Question generation is impossible until the bank file is fixed; the
	// process itself keeps running.
	ErrBankUnavailable = errors.New("template bank unavailable")

	// ErrNotFound means no record exists for the given employee id.
	ErrNotFound = errors.New("record not found")
)
