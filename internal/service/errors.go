package service

import "errors"

// Error kinds returned by the operations. Handlers match them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Error is an operation failure carrying a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Messages shown to users.
const (
	msgNotLoggedIn     = "You must be logged in"
	msgNoCredits       = "You have no credits remaining"
	msgNotCreator      = "You are not the creator of this meme"
	msgMissingInput    = "Please provide one or more topics and an audience"
	msgTooManyTopics   = "Please provide at most 3 topics"
	msgMemeNotFound    = "Meme not found"
	msgProviderFailed  = "Error calling OpenAI"
	msgNoToolCall      = "No function call in OpenAI response"
	msgNoTemplates     = "No meme templates available"
	msgInvalidLogin    = "Invalid username or password"
	msgUsernameTaken   = "Username is already taken"
	msgInvalidUsername = "Username must be between 3 and 32 characters"
	msgInvalidPassword = "Password must be between 8 and 72 characters"
	msgInvalidToken    = "Invalid or expired session"
	msgAdminOnly       = "Only admins can do this"
	msgNegativeCredits = "Credits must not be negative"
	msgUserNotFound    = "User not found"
)
