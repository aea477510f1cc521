package domain

import (
	"errors"
	"fmt"
)

// ProgramError is a validation failure raised by the tweet program itself.
// Codes follow the Anchor convention of numbering custom errors from 6000.
type ProgramError struct {
	Code    int
	Name    string
	Message string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

// Is matches any ProgramError with the same code.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	// ErrTopicTooLong is returned when a topic exceeds MaxTopicChars.
	ErrTopicTooLong = &ProgramError{
		Code:    6000,
		Name:    "TopicTooLong",
		Message: "Max 50 bro",
	}

	// ErrContentTooLong is returned when content exceeds MaxContentChars.
	ErrContentTooLong = &ProgramError{
		Code:    6001,
		Name:    "ContentTooLong",
		Message: "Content max 280 bro",
	}
)

// ErrInvalidEncoding is returned when the topic or content is not valid
// UTF-8. Such an instruction never deserializes, so it carries no program
// error code.
var ErrInvalidEncoding = errors.New("instruction strings are not valid utf-8")

// Collaborator failures. These are propagated unchanged by TweetService and
// are not part of the program's own error taxonomy.
var (
	ErrSlotExists        = errors.New("account already in use")
	ErrSlotNotFound      = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient lamports")
	ErrMissingSignature  = errors.New("missing required signature")
	ErrInvalidSignature  = errors.New("signature verification failed")
	ErrAccountMismatch   = errors.New("account data does not hold a tweet")
)

// AsProgramError returns the ProgramError in err's chain, if any.
func AsProgramError(err error) (*ProgramError, bool) {
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
