package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the identity token claims consumed by the
// messaging core. Tokens are issued by the external auth service; this core
// only validates them and trusts the embedded identity once past the gate.
type Payload struct {
	// StandardClaims embeds the JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer), used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable user identifier, matching the identifier used by the
	// presence registry and the message sender/receiver fields.
	ID string `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Role is pass-through metadata from the account service (e.g., "admin", "sales").
	Role string `json:"role"`
}
