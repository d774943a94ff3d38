package domain

// Provider names stamped onto identities.
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// Identity is a fully verified user identity. It is only ever built from a
// provider ID token that passed verification, or from one of our own tokens.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Provider      string `json:"provider,omitempty"`
}
