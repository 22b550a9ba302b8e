package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrEmailExists indicates that the email is already registered.
var ErrEmailExists = errors.New("email already registered")

// ErrUsernameExists indicates that the username is already taken.
var ErrUsernameExists = errors.New("username already taken")

// ErrInvalidCredentials covers both unknown usernames and wrong passwords so
// callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrAccountDisabled indicates the credentials were correct but the account
// has been deactivated.
var ErrAccountDisabled = errors.New("user account is disabled")

// ErrTokenInvalid indicates a token whose signature or structure failed
// verification.
var ErrTokenInvalid = errors.New("token is invalid")

// ErrTokenExpired indicates a structurally valid token past its expiry.
var ErrTokenExpired = errors.New("token has expired")

// ErrInvalidRefreshToken is surfaced for any refresh token that is unknown,
// already consumed, revoked, or fails hash verification. The cases are
// deliberately indistinguishable to the caller.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// ErrRefreshTokenExpired indicates a refresh token past its stored expiry.
var ErrRefreshTokenExpired = errors.New("refresh token has expired")

// ErrUserInactiveOrMissing indicates the user owning a refresh token no
// longer resolves to an active account.
var ErrUserInactiveOrMissing = errors.New("user not found or inactive")

// ErrUnauthenticated indicates a request whose bearer identity could not be
// resolved.
var ErrUnauthenticated = errors.New("could not validate credentials")

// ErrForbidden indicates the resolved identity lacks the required role.
var ErrForbidden = errors.New("access denied")
