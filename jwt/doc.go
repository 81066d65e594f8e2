// Package jwt implements the token lifecycle for authgate: stateless
// HS256-signed bearer tokens plus a Redis deny-list that gives the
// stateless credential a revocation mechanism.
package jwt
