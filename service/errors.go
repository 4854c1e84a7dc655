package service

import "errors"

var (
	ErrInvalidRange        = errors.New("invalid date-time range")
	ErrInvalidFormat       = errors.New("unknown output format")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoRecordingsInRange = errors.New("no recordings in range")
	ErrNoResolvableFiles   = errors.New("no resolvable recording files")
	ErrCombinationFailed   = errors.New("video combination failed")
	ErrBackupFailed        = errors.New("backup operation failed")
	ErrRestoreFailed       = errors.New("restore operation failed")
)
