// Package oidc implements the OAuth2 authorization-code flow used for SSO
// login. The exchanged token is handed to the session store via
// LoginWithToken; this package never inspects or verifies it.
package oidc

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Client wraps OAuth2 client functionality for an OIDC provider.
type Client struct {
	config *oauth2.Config
}

// NewClient creates an OAuth2 client against the given issuer.
func NewClient(issuer, clientID, clientSecret, redirectURI string) *Client {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  issuer + "/oauth2/authorize",
			TokenURL: issuer + "/oauth2/token",
		},
	}
	return &Client{config: config}
}

// AuthCodeURL returns the authorization URL the user visits to obtain a code.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for a bearer token. The ID
// token is preferred when the provider returns one; otherwise the access
// token is used.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		return idToken, nil
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("provider returned no usable token")
	}
	return token.AccessToken, nil
}
