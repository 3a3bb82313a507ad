// Package oidcauth obtains bearer tokens for the graph database connection
// via OIDC client-credentials, adapted from server-side token verification
// into client-side token acquisition: discovery still runs through
// coreos/go-oidc, but the token flow is oauth2/clientcredentials instead of
// a per-request JWT verifier.
package oidcauth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2/clientcredentials"
)

// Config names the issuer and client the run authenticates as.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Client is a mgclient.TokenSource backed by OIDC discovery and the
// client-credentials grant. Every Token call performs a fresh
// client-credentials exchange; tokens are not cached.
type Client struct {
	source tokenGetter
}

type tokenGetter interface {
	Token(ctx context.Context) (string, error)
}

type oauth2Getter struct {
	ccConfig clientcredentials.Config
}

func (g *oauth2Getter) Token(ctx context.Context) (string, error) {
	tok, err := g.ccConfig.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("oidcauth: acquiring token: %w", err)
	}
	return tok.AccessToken, nil
}

// New runs OIDC discovery against cfg.IssuerURL to find the token endpoint,
// then returns a Client that exchanges client credentials for bearer
// tokens on demand.
func New(ctx context.Context, cfg Config) (*Client, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidcauth: discovery against %s: %w", cfg.IssuerURL, err)
	}

	var endpoint struct {
		TokenURL string `json:"token_endpoint"`
	}
	if err := provider.Claims(&endpoint); err != nil {
		return nil, fmt.Errorf("oidcauth: reading token_endpoint from discovery document: %w", err)
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     endpoint.TokenURL,
		Scopes:       cfg.Scopes,
	}

	return &Client{source: &oauth2Getter{ccConfig: cc}}, nil
}

// Token satisfies mgclient.TokenSource.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.source.Token(ctx)
}
