package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/knowledgecopilot/backend/internal/config"
	"github.com/knowledgecopilot/backend/internal/models"
)

var (
	// ErrTokenExpired is returned when the token was valid but its validity
	// window has passed. Expiry is the only invalidation mechanism; there is
	// no revocation list.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed covers everything else: bad structure, bad signature,
	// wrong signing method, wrong issuer.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims are the bearer claims encoded in a session token.
type Claims struct {
	UserID string            `json:"userId"`
	Email  string            `json:"email"`
	Role   models.GlobalRole `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates a signed HS256 session token for the user.
func Generate(cfg *config.Config, u *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.TokenTTL)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Parse verifies the signature, expiry and issuer of a token string and
// returns the embedded claims.
func Parse(cfg *config.Config, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	}, jwt.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
