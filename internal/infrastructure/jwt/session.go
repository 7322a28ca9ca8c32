package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/popcornsocial/popcorn/internal/domain/entity"
)

// ParseSession builds a client session from an access token without verifying it.
// Only the issuing server can verify the signature; the client just needs the identity and expiry.
func ParseSession(accessToken, refreshToken string) (*entity.Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token has no subject")
	}

	sess := &entity.Session{
		UserID:       claims.Subject,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	if v, ok := claims.UserMetadata["username"].(string); ok {
		sess.Username = v
	}
	if v, ok := claims.UserMetadata["name"].(string); ok {
		sess.Name = v
	}
	return sess, nil
}
