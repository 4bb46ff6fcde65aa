// Package common contains shared constants and sentinel errors used across
// tripsync components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access
// token on outbound sync requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix prefixes the token value inside the Authorization header.
const BearerPrefix = "Bearer "
