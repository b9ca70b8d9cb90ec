package service

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrInvalidQuantity       = errors.New("item quantity must be positive")
	ErrProviderNotConfigured = errors.New("payment provider is not configured")
	ErrProviderRejected      = errors.New("payment provider rejected the session")
	ErrMissingSessionID      = errors.New("session id is required")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidSession        = errors.New("invalid or expired admin session")
	ErrAdminNotConfigured    = errors.New("admin access is not configured")
)
