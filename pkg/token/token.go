// Package token verifies the bearer tokens presented by doctor sockets.
//
// The coordinator never issues tokens (spec.md §1: "the core only
// *verifies* tokens") and never interprets the signing secret beyond using
// it to check a signature. The envelope is a minimal JWT-shaped compact
// serialization built on stdlib primitives: no JWT library appears
// anywhere in the retrieved corpus, so this is the one ambient concern
// this module builds on the standard library rather than a third-party
// dependency (see DESIGN.md).
package token

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/quietroom/core/pkg/ids"
)

// Kind is the principal kind carried by a token.
type Kind string

const (
	KindUser   Kind = "user"
	KindDoctor Kind = "doctor"
)

// Claims is the verified content of a bearer token (spec.md §4.2).
type Claims struct {
	ID    ids.ID `json:"id"`
	Email string `json:"email"`
	Kind  Kind   `json:"kind"`
}

// Errors returned by Verify.
var (
	ErrExpired = errors.New("token: expired")
	ErrInvalid = errors.New("token: invalid")
)

type envelope struct {
	Kind  Kind   `json:"kind"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

var header = mustB64(json.RawMessage(`{"alg":"HS256","typ":"QRT"}`))

// Verifier validates bearer tokens signed with a single symmetric secret,
// configured at startup, using HMAC-SHA-256 over a compact signed envelope
// (spec.md §4.2).
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier bound to secret. secret must be
// non-empty; callers typically source it from ROOMCORE_TOKEN_SECRET.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify validates the signature and expiry of token and returns its
// claims. Returns ErrExpired if exp is in the past, ErrInvalid for any
// other malformed/unsigned/mis-signed token.
func (v *Verifier) Verify(tok string) (Claims, error) {
	parts := bytes.Split([]byte(tok), []byte("."))
	if len(parts) != 3 {
		return Claims{}, ErrInvalid
	}
	headerB64, payloadB64, sigB64 := string(parts[0]), string(parts[1]), string(parts[2])

	wantSig := v.sign(headerB64 + "." + payloadB64)
	gotSig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return Claims{}, ErrInvalid
	}
	if subtle.ConstantTimeCompare(wantSig, gotSig) != 1 {
		return Claims{}, ErrInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return Claims{}, ErrInvalid
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Claims{}, ErrInvalid
	}

	if env.Kind != KindUser && env.Kind != KindDoctor {
		return Claims{}, ErrInvalid
	}
	id, err := ids.Parse(env.ID)
	if err != nil {
		return Claims{}, ErrInvalid
	}
	if env.Exp == 0 {
		return Claims{}, ErrInvalid
	}
	if time.Unix(env.Exp, 0).Before(time.Now()) {
		return Claims{}, ErrExpired
	}

	return Claims{ID: id, Email: env.Email, Kind: env.Kind}, nil
}

// Issue is provided for tests and local tooling only; production token
// issuance lives in the out-of-scope HTTP surface (spec.md §1).
func (v *Verifier) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	env := envelope{
		Kind:  claims.Kind,
		ID:    claims.ID.String(),
		Email: claims.Email,
		Iat:   now.Unix(),
		Exp:   now.Add(ttl).Unix(),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	payloadB64 := base64.RawURLEncoding.EncodeToString(payload)
	signingInput := header + "." + payloadB64
	sig := v.sign(signingInput)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

func (v *Verifier) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func mustB64(raw json.RawMessage) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
