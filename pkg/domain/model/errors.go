package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for domain operations
var (
	ErrAssetNotFound    = goerr.New("asset not found")
	ErrIssueNotFound    = goerr.New("issue not found")
	ErrWardNotFound     = goerr.New("ward not found")
	ErrSnapshotNotFound = goerr.New("snapshot not found")
	ErrInvalidInput     = goerr.New("invalid input")
)

// IsNotFound reports whether err wraps any of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrIssueNotFound) ||
		errors.Is(err, ErrWardNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}
