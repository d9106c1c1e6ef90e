package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

type Claims struct {
	jwt.RegisteredClaims
}

// Manager signs session tokens and checks them against a Store. The token
// only names a session; revocation happens in the store.
type Manager struct {
	Store  Store
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{Store: store, Secret: secret, TTL: ttl, Now: time.Now}
}

func (m *Manager) Issue(ctx context.Context, userID uint) (string, time.Time, error) {
	now := m.Now()
	exp := now.Add(m.TTL)
	jti := uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := m.Store.Save(ctx, jti, userID, exp); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}
	return token, exp, nil
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.Now))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Resolve returns the user owning an active session. Malformed, forged,
// expired and revoked tokens all report ok == false without an error.
func (m *Manager) Resolve(ctx context.Context, tokenStr string) (uint, bool, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return 0, false, nil
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, false, nil
	}

	userID, ok, err := m.Store.Resolve(ctx, claims.ID)
	if err != nil || !ok {
		return 0, false, err
	}
	if userID != uint(sub) {
		return 0, false, nil
	}
	return userID, true, nil
}

func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return err
	}
	return m.Store.Revoke(ctx, claims.ID)
}
