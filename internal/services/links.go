package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/resume-gate/internal/config"
	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/mail"
)

// DecisionPath is the route that handles owner decision links.
const DecisionPath = "/admin/approve-download"

const linkIssuer = "resume-gate"

// LinkBuilder builds the approve/deny URLs mailed to the owner. With an
// empty Secret the links are bare (id + action), so possession of the link
// is the only gate. With a Secret each link also carries an HS256 token
// bound to the id and action that expires after TTL.
type LinkBuilder struct {
	BaseURL string
	Secret  []byte
	TTL     time.Duration
	Now     func() time.Time
}

// NewLinkBuilder builds links from cfg; an empty secret yields bare links.
func NewLinkBuilder(cfg config.LinksConfig) LinkBuilder {
	b := LinkBuilder{BaseURL: cfg.BaseURL, TTL: cfg.TTL}
	if cfg.Secret != "" {
		b.Secret = []byte(cfg.Secret)
	}
	return b
}

type decisionClaims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Signed reports whether links carry a token.
func (b LinkBuilder) Signed() bool { return len(b.Secret) > 0 }

func (b LinkBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Links returns both decision URLs for a request id.
func (b LinkBuilder) Links(id string) (mail.DecisionLinks, error) {
	approve, err := b.URL(id, domain.ActionApprove)
	if err != nil {
		return mail.DecisionLinks{}, err
	}
	deny, err := b.URL(id, domain.ActionDeny)
	if err != nil {
		return mail.DecisionLinks{}, err
	}
	return mail.DecisionLinks{Approve: approve, Deny: deny}, nil
}

// URL returns <base>/admin/approve-download?id=<id>&action=<action>, plus
// &token=<jwt> when signed.
func (b LinkBuilder) URL(id string, a domain.Action) (string, error) {
	u := fmt.Sprintf("%s%s?id=%s&action=%s", b.BaseURL, DecisionPath, url.QueryEscape(id), url.QueryEscape(string(a)))
	if b.Signed() {
		tok, err := b.token(id, a)
		if err != nil {
			return "", err
		}
		u += "&token=" + url.QueryEscape(tok)
	}
	return u, nil
}

func (b LinkBuilder) token(id string, a domain.Action) (string, error) {
	now := b.now()
	claims := decisionClaims{
		Action: string(a),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    linkIssuer,
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
}

// Verify checks token against id and action. It is a no-op for unsigned
// builders. Every failure maps to ErrInvalidLink.
func (b LinkBuilder) Verify(token, id string, a domain.Action) error {
	if !b.Signed() {
		return nil
	}
	if token == "" {
		return ErrInvalidLink
	}
	claims := &decisionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return b.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(linkIssuer),
		jwt.WithSubject(id),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if claims.Action != string(a) {
		return fmt.Errorf("%w: action mismatch", ErrInvalidLink)
	}
	return nil
}
