package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the actor lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// userSafe lists sentinel errors whose messages may be shown verbatim.
var userSafe = []error{ErrNotFound, ErrInvalidCredentials, ErrForbidden}

// RegisterUserSafe marks additional sentinel errors as safe for responses.
// Domain packages call this from init so the HTTP layer can surface their
// messages without leaking store internals.
func RegisterUserSafe(errs ...error) {
	userSafe = append(userSafe, errs...)
}

// UserSafeMessage returns a message suitable for API consumers. Unexpected
// errors collapse to a generic message; registered sentinels pass through.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, safe := range userSafe {
		if errors.Is(err, safe) {
			return err.Error()
		}
	}
	return "something went wrong, please try again"
}
