package domain

import "errors"

// Platform selects how a session is carried: an HTTP-only cookie for web
// clients, a bearer token pair for native ones.
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformNative Platform = "native"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// ParsePlatform accepts exactly "web" or "native".
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformWeb, PlatformNative:
		return p, nil
	default:
		return "", ErrUnknownPlatform
	}
}

// ParsePlatformOrNative treats an empty value as native; older native
// builds never sent the field.
func ParsePlatformOrNative(s string) (Platform, error) {
	if s == "" {
		return PlatformNative, nil
	}
	return ParsePlatform(s)
}

func (p Platform) String() string { return string(p) }
