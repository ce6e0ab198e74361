package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of an issued access token. The subject holds the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}
