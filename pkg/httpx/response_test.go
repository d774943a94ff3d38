package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/betomoedano/expo-oauth-example/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.ChainFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token expired")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"Refresh token expired","code":"invalid_refresh_token"}`, rec.Body.String())
}

type appleBody struct {
	IdentityToken string `json:"identityToken" validate:"required"`
	RawNonce      string `json:"rawNonce" validate:"required"`
	Platform      string `json:"platform" validate:"omitempty,oneof=web native"`
}

func TestBindJSON(t *testing.T) {
	bind := func(contentType, body string) (appleBody, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		var dst appleBody
		return dst, httpx.BindJSON(req, &dst)
	}

	t.Run("valid", func(t *testing.T) {
		b, err := bind("application/json; charset=utf-8", `{"identityToken":"t","rawNonce":"n","extra":1}`)
		require.NoError(t, err)
		require.Equal(t, "t", b.IdentityToken)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := bind("application/json", `{"identityToken":"t"}`)
		require.Error(t, err)
		require.Equal(t, `Missing required field "rawNonce"`, httpx.ValidationMessage(err))
	})

	t.Run("bad enum", func(t *testing.T) {
		_, err := bind("application/json", `{"identityToken":"t","rawNonce":"n","platform":"desktop"}`)
		require.Error(t, err)
		require.Equal(t, `Invalid value for field "platform"`, httpx.ValidationMessage(err))
	})

	t.Run("wrong content type", func(t *testing.T) {
		_, err := bind("text/plain", `{}`)
		require.ErrorIs(t, err, httpx.ErrUnsupportedMediaType)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := bind("application/json", `{`)
		require.ErrorIs(t, err, httpx.ErrBadJSON)
		require.Equal(t, "Malformed request body", httpx.ValidationMessage(err))
	})
}
