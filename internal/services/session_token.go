package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/cvagent/internal/models"
)

const DefaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
)

type SessionClaims struct {
	PersonID uint   `json:"pid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies the HS256 tokens carried in the session
// cookie. Tokens are signed, not encrypted.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionIssuer(secret []byte, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (issuer *SessionIssuer) TTL() time.Duration {
	return issuer.ttl
}

func (issuer *SessionIssuer) Issue(person models.Person) (string, time.Time, error) {
	if person.ID == 0 {
		return "", time.Time{}, ErrInvalidSession
	}

	now := issuer.now()
	expiresAt := now.Add(issuer.ttl)
	claims := SessionClaims{
		PersonID: person.ID,
		Role:     person.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(person.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (issuer *SessionIssuer) Verify(rawToken string) (SessionClaims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return SessionClaims{}, ErrInvalidSession
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidSession
			}
			return issuer.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(issuer.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return SessionClaims{}, ErrSessionExpired
	}
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidSession
	}
	if claims.PersonID == 0 {
		return SessionClaims{}, ErrInvalidSession
	}
	return *claims, nil
}
