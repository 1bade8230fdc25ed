package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"ms-tradein/internal/models"
)

// Claims covers both Keycloak-style realm roles and a flat roles list.
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// Actor picks the most privileged known role on the token.
func (c *Claims) Actor() (models.Actor, error) {
	if c.Subject == "" {
		return models.Actor{}, errors.New("subject claim not found in token")
	}
	has := map[string]bool{}
	for _, r := range append(append([]string{}, c.Roles...), c.RealmAccess.Roles...) {
		has[strings.ToLower(r)] = true
	}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleRecycler, models.RoleCustomer} {
		if has[string(role)] {
			return models.Actor{ID: c.Subject, Role: role}, nil
		}
	}
	return models.Actor{}, errors.New("token carries no trade-in role")
}

// HMACVerifier validates HS256 tokens signed with a shared secret, for
// deployments without an identity provider.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// Sign issues an HS256 token. Used by tests and the local demo seed.
func (v *HMACVerifier) Sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ExtractTokenFromRequest extracts a bearer token from the Authorization
// header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}
