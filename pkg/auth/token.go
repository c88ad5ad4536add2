package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL は管理者トークンの有効期間
const TokenTTL = time.Hour

const minSecretLen = 32

// ErrInvalidToken はトークンが不正・改ざん・期限切れのいずれかの場合のエラー（理由は区別しない）
var ErrInvalidToken = errors.New("invalid token")

// Claims は管理者トークンに埋め込むクレーム
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Signer は HS256 で管理者トークンを発行・検証する
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner は Signer を生成する
func NewSigner(secret string) *Signer {
	return &Signer{secret: SecretBytes(secret), now: time.Now}
}

// WithClock は時刻関数を差し替えた Signer を返す（テスト用）
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, now: now}
}

// Issue は username を埋め込んだ 1 時間有効なトークンを発行する
func (s *Signer) Issue(username string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify は署名と有効期限を検証し、クレームを返す
func (s *Signer) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SecretBytes は文字列から署名用のバイト列を生成する（最低32バイト）
func SecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
