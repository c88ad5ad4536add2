package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/servicedesk/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials は設定から読み込んだ唯一の管理者資格情報
type AdminCredentials struct {
	Username     string
	PasswordHash []byte
}

// NewAdminCredentials は管理者資格情報を生成する。
// passwordHash（bcrypt）が指定されていればそれを使い、なければ password をハッシュ化する
func NewAdminCredentials(username, password, passwordHash string) (AdminCredentials, error) {
	if username == "" {
		return AdminCredentials{}, errors.New("admin username is empty")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return AdminCredentials{}, fmt.Errorf("admin password hash: %w", err)
		}
		return AdminCredentials{Username: username, PasswordHash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return AdminCredentials{}, errors.New("admin password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminCredentials{}, fmt.Errorf("hash admin password: %w", err)
	}
	return AdminCredentials{Username: username, PasswordHash: hash}, nil
}

// AuthServiceImpl は AuthService の実装
type AuthServiceImpl struct {
	admin  AdminCredentials
	signer *auth.Signer
}

// NewAuthService は AuthServiceImpl を生成する
func NewAuthService(admin AdminCredentials, signer *auth.Signer) *AuthServiceImpl {
	return &AuthServiceImpl{admin: admin, signer: signer}
}

var _ AuthService = (*AuthServiceImpl)(nil)

// Login はユーザー名とパスワードの両方を常に照合し、どちらが誤りかは返さない
func (s *AuthServiceImpl) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.admin.PasswordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	token, err := s.signer.Issue(s.admin.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Authenticate は署名と有効期限を検証する。失敗理由は区別しない
func (s *AuthServiceImpl) Authenticate(token string) (auth.Identity, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return auth.Identity{}, ErrUnauthenticated
	}
	return auth.Identity{Username: claims.Username}, nil
}
