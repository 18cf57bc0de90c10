package service

import (
	"github.com/golang-jwt/jwt/v5"

	"walletgate/internal/auth/models"
	dErrors "walletgate/pkg/domain-errors"
)

// idTokenParser decodes without verifying: the ID token arrives over the
// TLS back channel straight from the token endpoint, and this client holds
// no signing keys. That trust boundary is deliberate; claims from any other
// source must not be fed through here.
var idTokenParser = jwt.NewParser()

// DecodeIDToken extracts identity claims from a three-part signed token.
// Anything that is not header.payload.signature, or whose payload does not
// decode, fails with ErrInvalidTokenFormat.
func (s *Service) DecodeIDToken(idToken string) (*models.UserInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := idTokenParser.ParseUnverified(idToken, claims); err != nil {
		return nil, dErrors.Wrap(ErrInvalidTokenFormat, dErrors.CodeBadRequest, err.Error())
	}

	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}

	id := str("oid")
	if id == "" {
		id = str("sub")
	}
	email := str("preferred_username")
	if email == "" {
		email = str("email")
	}

	return &models.UserInfo{
		ID:         id,
		Email:      email,
		Name:       str("name"),
		GivenName:  str("given_name"),
		FamilyName: str("family_name"),
		UPN:        str("upn"),
	}, nil
}
