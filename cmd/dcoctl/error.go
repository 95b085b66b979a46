package main

import (
	"errors"
)

type usageError struct {
	error
}

func newUsageError(msg string) usageError {
	return usageError{error: errors.New(msg)}
}

var errorWantedNoArgs = newUsageError("expected no (non-flag) arguments")
var errorInvalidOutputFormat = newUsageError("invalid output format specified")

// errorCheckFailed is returned once a failing verdict has been
// printed, so the process exits non-zero.
var errorCheckFailed = errors.New("DCO check failed")
