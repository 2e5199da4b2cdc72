package token

// Package token provides credential inspection helpers: unverified expiry
// checks on JWTs and role/permission evaluation. Nothing here validates a
// signature; cryptographic validation belongs to the boundary.

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
)

// ErrNoExpiry is returned when a token carries no exp claim.
var ErrNoExpiry = errors.New("token has no expiry claim")

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// ExpiresAt extracts the exp claim from a JWT without verifying its signature.
func ExpiresAt(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// IsExpired reports whether the token's exp claim is in the past. Malformed
// tokens and tokens without an expiry count as expired.
func IsExpired(raw string) bool {
	exp, err := ExpiresAt(raw)
	if err != nil {
		return true
	}
	return exp.Before(time.Now())
}

// HasPermission reports whether the permission set grants the required
// permission. The "admin" permission acts as a wildcard.
func HasPermission(permissions []string, required string) bool {
	for _, p := range permissions {
		if p == required || p == "admin" {
			return true
		}
	}
	return false
}

// roleHierarchy maps each role to the roles it subsumes.
var roleHierarchy = map[domainauth.Role][]domainauth.Role{
	domainauth.RoleAdmin: {domainauth.RoleAdmin, domainauth.RoleUser},
	domainauth.RoleUser:  {domainauth.RoleUser},
}

// HasRole reports whether userRole satisfies requiredRole under the role
// hierarchy (admin subsumes user). Unknown roles satisfy nothing.
func HasRole(userRole, requiredRole domainauth.Role) bool {
	for _, r := range roleHierarchy[userRole] {
		if r == requiredRole {
			return true
		}
	}
	return false
}
