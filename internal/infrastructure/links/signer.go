// Package links signs and verifies the tokens embedded in public approval links.
package links

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

const issuer = "contentstudio"

type approvalClaims struct {
	ItemID string `json:"item"`
	Stage  string `json:"stage"`
	jwt.RegisteredClaims
}

// Signer issues HS256 tokens that expire after a fixed TTL.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

var _ ports.LinkSigner = (*Signer)(nil)

// NewSigner builds a signer. A zero ttl issues tokens without expiry.
func NewSigner(key string, ttl time.Duration, now func() time.Time) (*Signer, error) {
	if key == "" {
		return nil, errors.New("approval signing key is empty")
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{key: []byte(key), ttl: ttl, now: now}, nil
}

// Sign implements ports.LinkSigner.
func (s *Signer) Sign(c ports.ApprovalClaims) (string, error) {
	if c.ItemID == "" {
		return "", errors.New("approval claims need an item id")
	}
	issued := s.now()
	claims := approvalClaims{
		ItemID: c.ItemID,
		Stage:  string(c.Stage),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issued.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign approval token: %w", err)
	}
	return token, nil
}

// Verify implements ports.LinkSigner.
func (s *Signer) Verify(token string) (ports.ApprovalClaims, error) {
	var claims approvalClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.ApprovalClaims{}, errors.New("approval link has expired")
		}
		return ports.ApprovalClaims{}, fmt.Errorf("invalid approval link: %w", err)
	}

	stage := domain.Stage(claims.Stage)
	if claims.ItemID == "" || !stage.Valid() {
		return ports.ApprovalClaims{}, errors.New("invalid approval link: incomplete claims")
	}
	return ports.ApprovalClaims{ItemID: claims.ItemID, Stage: stage}, nil
}
