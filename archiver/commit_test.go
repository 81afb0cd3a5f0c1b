package archiver

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datatogether/archivertools/archiverdb"
	"github.com/datatogether/archivertools/identity"
)

func TestCommit(t *testing.T) {
	t.Run("completes the identity round-trip", func(tt *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(tt, err)

		sessionChecked := false
		mux := http.NewServeMux()
		mux.HandleFunc("/jwt", func(w http.ResponseWriter, r *http.Request) {
			token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			signed, err := token.SignedString(key)
			require.NoError(tt, err)
			io.WriteString(w, signed)
		})
		mux.HandleFunc("/publickey", func(w http.ResponseWriter, r *http.Request) {
			der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
			require.NoError(tt, err)
			pem.Encode(w, &pem.Block{Type: "PUBLIC KEY", Bytes: der})
		})
		mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			sessionChecked = true
			io.WriteString(w, "ok")
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html></html>")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		db, err := archiverdb.Open(":memory:")
		require.NoError(tt, err)
		a, err := NewWithOptions(srv.URL, "u", Options{
			DB:         db,
			HTTPClient: srv.Client(),
			Identity:   identity.New(srv.URL, "test-api-key", srv.Client()),
			Logger:     log.New(io.Discard),
		})
		require.NoError(tt, err)
		defer a.Close()

		assert.NoError(tt, a.Commit(context.Background()))
		assert.True(tt, sessionChecked)
	})

	t.Run("fails without an api key", func(tt *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html></html>")
		}))
		defer srv.Close()

		db, err := archiverdb.Open(":memory:")
		require.NoError(tt, err)
		a, err := NewWithOptions(srv.URL, "u", Options{
			DB:         db,
			HTTPClient: srv.Client(),
			Identity:   identity.New(srv.URL, "", srv.Client()),
			Logger:     log.New(io.Discard),
		})
		require.NoError(tt, err)
		defer a.Close()

		assert.Equal(tt, identity.ErrNoAPIKey, a.Commit(context.Background()))
	})
}
