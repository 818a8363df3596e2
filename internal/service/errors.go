package service

import "errors"

var (
	ErrEmailTaken         = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("user not found")
	ErrVerification       = errors.New("verification error")
	ErrContactNotFound    = errors.New("contact not found")
	ErrContactEmailTaken  = errors.New("contact with this email already exists")
	ErrAvatarsDisabled    = errors.New("avatar storage is not configured")
	ErrUnsupportedAvatar  = errors.New("avatar must be an image")
)
