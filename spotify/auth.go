//
// Date: 2026-08-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: OAuth PKCE flow and the local callback server.
//

package spotify

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// authFlow holds the PKCE material for one authorization attempt. The code
// verifier, challenge, and state token are generated once at construction and
// reused for the URL build and the token exchange.
type authFlow struct {
	auth      *spotifyauth.Authenticator
	clientID  string
	verifier  string
	challenge string
	state     string
}

// newAuthFlow generates fresh PKCE material and builds the authenticator.
// No client secret is configured; the code verifier takes its place.
func newAuthFlow(cfg Config) (*authFlow, error) {
	verifier, err := randomURLSafe(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	state, err := randomURLSafe(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopeUserReadCurrentlyPlaying,
		}
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(scopes...),
	)

	return &authFlow{
		auth:      auth,
		clientID:  cfg.ClientID,
		verifier:  verifier,
		challenge: challengeS256(verifier),
		state:     state,
	}, nil
}

// authURL returns the authorization URL the user must visit. The challenge is
// the S256 transform of the verifier, per RFC 7636.
func (a *authFlow) authURL() string {
	return a.auth.AuthURL(a.state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", a.challenge),
	)
}

// token exchanges the authorization code carried by the callback request for
// an access token, sending the code verifier in place of a client secret.
func (a *authFlow) token(ctx context.Context, r *http.Request) (*oauth2.Token, error) {
	return a.auth.Token(ctx, a.state, r,
		oauth2.SetAuthURLParam("client_id", a.clientID),
		oauth2.SetAuthURLParam("code_verifier", a.verifier),
	)
}

// client returns an HTTP client that authenticates requests with the token.
func (a *authFlow) client(ctx context.Context, token *oauth2.Token) *http.Client {
	return a.auth.Client(ctx, token)
}

// Authenticate runs the interactive authorization flow: it prints the
// authorization URL, starts a local HTTP server on the redirect address,
// waits for Spotify to redirect back with the code, exchanges it, and shuts
// the server down. The Player is ready for API calls when it returns.
func (p *Player) Authenticate(ctx context.Context) error {
	redirect, err := url.Parse(p.cfg.RedirectURI)
	if err != nil {
		return fmt.Errorf("failed to parse redirect URI: %w", err)
	}
	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if st := r.FormValue("state"); st != p.flow.state {
			http.Error(w, "State mismatch", http.StatusForbidden)
			errs <- fmt.Errorf("state mismatch: %s != %s", st, p.flow.state)
			return
		}

		tok, err := p.flow.token(r.Context(), r)
		if err != nil {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			errs <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		tokens <- tok
	})

	srv := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("callback server failed: %w", err)
		}
	}()

	fmt.Println("Please visit this URL to authenticate:")
	fmt.Println(p.AuthURL())

	var result error
	select {
	case tok := <-tokens:
		p.SetToken(tok)
	case err := <-errs:
		result = err
	case <-ctx.Done():
		result = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: failed to shut down callback server: %v", err)
	}

	return result
}

// randomURLSafe returns n random bytes encoded as unpadded base64url.
func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// challengeS256 derives the PKCE code challenge from a verifier.
func challengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
