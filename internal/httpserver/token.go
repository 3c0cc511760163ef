package httpserver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// cardTokenTTL bounds how long a card can be marked after it was dealt.
const cardTokenTTL = 24 * time.Hour

// tokenIssuer signs and verifies HS256 card tokens. The signing key is
// derived from CARD_SECRET with HKDF so the raw secret is never a JWT key.
type tokenIssuer struct {
	key []byte
	now func() time.Time
}

func newTokenIssuer(secret string) *tokenIssuer {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("bingo card token v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		// HKDF-SHA256 can emit far more than 32 bytes.
		panic(err)
	}
	return &tokenIssuer{key: key, now: time.Now}
}

// issue returns a token binding the bearer to cardID, and its expiry.
func (t *tokenIssuer) issue(cardID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(cardTokenTTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"cid": cardID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	})
	ss, err := tok.SignedString(t.key)
	return ss, exp, err
}

// verify checks a token and returns the card ID it was issued for.
func (t *tokenIssuer) verify(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if !tok.Valid {
		return "", errors.New("token not valid")
	}
	cid, _ := claims["cid"].(string)
	if cid == "" {
		return "", fmt.Errorf("token has no card id")
	}
	return cid, nil
}
