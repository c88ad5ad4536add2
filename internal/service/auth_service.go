package service

import "github.com/servicedesk/backend/pkg/auth"

// AuthService は管理者ログインとトークン検証のインターフェース
type AuthService interface {
	// Login は資格情報を照合し、1 時間有効なトークンを返す
	Login(username, password string) (string, error)
	// Authenticate はトークンを検証し管理者 Identity を返す
	Authenticate(token string) (auth.Identity, error)
}
