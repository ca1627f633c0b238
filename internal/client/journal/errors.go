package journal

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned, without any remote call, when a mutation is
// attempted while signed out.
var ErrAuthRequired = errors.New("journal: authentication required")

// User-facing failure messages.
const (
	MsgLoadEntries   = "Failed to load entries"
	MsgLoadSections  = "Failed to load folders"
	MsgAddEntry      = "Failed to add entry"
	MsgUpdateEntry   = "Failed to update entry"
	MsgAddSection    = "Failed to add folder"
	MsgUpdateSection = "Failed to update folder"
	MsgDeleteSection = "Failed to delete folder"
	MsgAuthRequired  = "Please sign in first"
)

// RemoteError reports a failed store call. Message is safe to show users;
// Err keeps the cause for logs and errors.Is.
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remoteErr(op, msg string, err error) error {
	return &RemoteError{Op: op, Message: msg, Err: err}
}

// ValidationError rejects input before any remote call is issued. It is also
// used for rows that do not match the expected schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// UserMessage maps an error from this package to the text shown to users.
func UserMessage(err error) string {
	var remote *RemoteError
	var invalid *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthRequired):
		return MsgAuthRequired
	case errors.As(err, &remote):
		return remote.Message
	case errors.As(err, &invalid):
		return invalid.Error()
	default:
		return err.Error()
	}
}
