package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CognitoVerifier validates Cognito user-pool JWTs against the pool's JWKS.
type CognitoVerifier struct {
	issuer   string
	clientID string
	jwks     *jwksCache
	parser   *jwt.Parser
}

type CognitoOption func(*cognitoOptions)

type cognitoOptions struct {
	httpClient *http.Client
	jwksURL    string
	issuer     string
}

func WithHTTPClient(c *http.Client) CognitoOption {
	return func(o *cognitoOptions) { o.httpClient = c }
}

// WithEndpoints overrides the derived issuer and JWKS URL.
func WithEndpoints(issuer, jwksURL string) CognitoOption {
	return func(o *cognitoOptions) {
		o.issuer = issuer
		o.jwksURL = jwksURL
	}
}

// NewCognitoVerifier builds a verifier for the given pool. clientID may be
// empty, in which case the audience is not checked.
func NewCognitoVerifier(region, userPoolID, clientID string, opts ...CognitoOption) (*CognitoVerifier, error) {
	region = strings.TrimSpace(region)
	userPoolID = strings.TrimSpace(userPoolID)
	if region == "" {
		return nil, errors.New("auth: region must not be empty")
	}
	if userPoolID == "" {
		return nil, errors.New("auth: user pool id must not be empty")
	}

	o := cognitoOptions{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		issuer:     fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jwksURL == "" {
		o.jwksURL = o.issuer + "/.well-known/jwks.json"
	}
	if o.httpClient == nil {
		return nil, errors.New("auth: http client must not be nil")
	}

	return &CognitoVerifier{
		issuer:   o.issuer,
		clientID: strings.TrimSpace(clientID),
		jwks:     newJWKSCache(o.httpClient, o.jwksURL),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer(o.issuer),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}, nil
}

// Verify returns the token's sub claim.
func (v *CognitoVerifier) Verify(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", newError(MsgMissingToken, nil)
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", newError(MsgExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", newError(MsgMalformed, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "", newError(MsgClaimMismatch, err)
	default:
		return "", newError(MsgFailed, err)
	}

	if v.clientID != "" && !audienceMatches(claims, v.clientID) {
		return "", newError(MsgClaimMismatch, errors.New("audience mismatch"))
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return "", newError(MsgNoSubject, nil)
	}
	return sub, nil
}

// audienceMatches accepts ID tokens (aud) and access tokens (client_id).
func audienceMatches(claims jwt.MapClaims, clientID string) bool {
	if aud, err := claims.GetAudience(); err == nil {
		for _, a := range aud {
			if a == clientID {
				return true
			}
		}
	}
	cid, _ := claims["client_id"].(string)
	return cid == clientID
}
