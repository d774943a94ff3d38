package service

import "errors"

var (
	ErrInvalidState       = errors.New("invalid_state")
	ErrInvalidRedirectURI = errors.New("invalid_redirect_uri")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrMissingIDToken     = errors.New("missing_id_token")
	ErrInvalidIDToken     = errors.New("invalid_id_token")
	ErrInvalidNonce       = errors.New("invalid_nonce")
	ErrRefreshExpired     = errors.New("refresh_token_expired")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrMisconfigured      = errors.New("server_misconfiguration")
)
