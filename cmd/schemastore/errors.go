package main

import (
	"errors"
	"fmt"
	"os"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
)

const (
	exitSuccess  = 0
	exitGeneral  = 1
	exitConfig   = 2
	exitDocument = 3
	exitDatabase = 4
	exitConflict = 5
)

type exitError struct {
	Code    int
	Message string
	Err     error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *exitError) Unwrap() error { return e.Err }

func configError(msg string, err error) *exitError {
	return &exitError{Code: exitConfig, Message: msg, Err: err}
}

func documentError(msg string, err error) *exitError {
	return &exitError{Code: exitDocument, Message: msg, Err: err}
}

func databaseError(msg string, err error) *exitError {
	return &exitError{Code: exitDatabase, Message: msg, Err: err}
}

// repositoryError picks an exit code from the aggregate error code so
// scripts can tell a stale write from a broken database.
func repositoryError(msg string, err error) *exitError {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return &exitError{Code: exitConflict, Message: msg, Err: err}
	case domainagg.CodeRetryable:
		return &exitError{Code: exitDatabase, Message: msg, Err: err}
	default:
		return &exitError{Code: exitGeneral, Message: msg, Err: err}
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitGeneral
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitCode(err))
}
