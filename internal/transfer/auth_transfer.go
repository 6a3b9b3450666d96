package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type ApiKeyCreation struct {
	Name string `json:"name"`
}

// UserInfo is the signed-in user plus a count of their posts per status.
type UserInfo struct {
	ID             int64          `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	ProfilePicture string         `json:"profile_picture"`
	Accounts       int            `json:"accounts"`
	Posts          map[string]int `json:"posts"`
}
