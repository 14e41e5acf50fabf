package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure or warning. The presentation layer
// maps kinds to localized messages and exit codes.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidArgument
	PermissionDenied
	AlreadyMounted
	DeviceNotLuks
	MountPointCreationFailed
	UnlockFailed
	MountFailed
	StatePersistFailed
	NotMounted
	UnmountFailed
	LockFailed
	StoreUnavailable
	RecordRemoveFailed
	StaleRecord
	RiskyMountOption
)

var kindNames = map[Kind]string{
	KindUnknown:              "unknown",
	InvalidArgument:          "invalid_argument",
	PermissionDenied:         "permission_denied",
	AlreadyMounted:           "already_mounted",
	DeviceNotLuks:            "device_not_luks",
	MountPointCreationFailed: "mount_point_creation_failed",
	UnlockFailed:             "unlock_failed",
	MountFailed:              "mount_failed",
	StatePersistFailed:       "state_persist_failed",
	NotMounted:               "not_mounted",
	UnmountFailed:            "unmount_failed",
	LockFailed:               "lock_failed",
	StoreUnavailable:         "store_unavailable",
	RecordRemoveFailed:       "record_remove_failed",
	StaleRecord:              "stale_record",
	RiskyMountOption:         "risky_mount_option",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a typed workflow condition. Path is the device or mount point
// the condition is about.
type Error struct {
	Kind Kind
	Path string
	Err  error
	// RollbackErr is set when a compensating action failed as well.
	RollbackErr error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.RollbackErr != nil {
		msg += " (rollback failed: " + e.RollbackErr.Error() + ")"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.RollbackErr != nil {
		errs = append(errs, e.RollbackErr)
	}
	return errs
}

// Is matches another *Error of the same kind, so errors.Is(err,
// &Error{Kind: MountFailed}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Path == "" && t.Err == nil
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var wfErr *Error
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	return KindUnknown
}
