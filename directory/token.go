package directory

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials builds a token source that exchanges client
// credentials at the given token endpoint. Tokens are cached and
// refreshed on expiry, so one source serves the life of the process.
func ClientCredentials(ctx context.Context, tokenURL, clientID, clientSecret string, scopes []string) oauth2.TokenSource {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return cfg.TokenSource(ctx)
}

// StaticToken wraps a fixed bearer token, mainly for tests and local
// runs against a stub.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}
