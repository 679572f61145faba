package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// They carry the minimal identity set: subject id and a coarse role tag.
// Fine-grained permissions are resolved server-side per request and never
// embedded in the token, so a role reassignment takes effect without reissue.
type Claims struct {
	jwt.RegisteredClaims

	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}
