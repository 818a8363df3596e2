package domain

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
