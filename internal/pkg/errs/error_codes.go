/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Messaging and Group Business Logic Errors
const (
	// ErrEmptyMessage indicates that a chat message contained no content after trimming whitespace.
	ErrEmptyMessage = 2101

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2102

	// ErrGroupNotFound indicates that the referenced group does not exist.
	ErrGroupNotFound = 2201

	// ErrGroupNameRequired indicates that a group create or rename request carried an empty name.
	ErrGroupNameRequired = 2202

	// ErrMemberListRequired indicates that an add-members request carried no user identifiers.
	ErrMemberListRequired = 2203

	// ErrMalformedCiphertext indicates that a stored message body could not be decrypted.
	// This is a data-integrity signal, not a user-facing validation error.
	ErrMalformedCiphertext = 2301
)

// 3xxx: Identity and Session Errors
const (
	// ErrUnauthorized indicates a missing or invalid identity token at the REST boundary.
	ErrUnauthorized = 3001

	// ErrUserNotFound indicates that the referenced user identifier is unknown to the directory.
	ErrUserNotFound = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
