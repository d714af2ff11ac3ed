package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/addrauth/adapters/store"
	"github.com/layer-3/addrauth/adapters/verifier"
	"github.com/layer-3/addrauth/core"
	"github.com/layer-3/addrauth/ports"
	"github.com/layer-3/addrauth/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, v ports.SignatureVerifier) *gin.Engine {
	t.Helper()
	svc, err := service.New(service.Config{
		VerifySignature: v,
		JWTSecret:       "test-secret",
		Store:           store.NewMemoryStore(),
	})
	require.NoError(t, err)
	return SetupRouter(svc, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestEthereumLoginFlow(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	publicKey := hexutil.Encode(crypto.CompressPubkey(&key.PublicKey))

	router := newTestRouter(t, verifier.NewEthVerifier())

	w, created := doJSON(t, router, http.MethodPost, "/addrauth/create", gin.H{"address": address}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	challenge := created["challenge"].(string)
	assert.Contains(t, challenge, core.ChallengeSuffix)

	sig, err := crypto.Sign(accounts.TextHash([]byte(challenge)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	body := gin.H{
		"token":     created["token"],
		"signature": hexutil.Encode(sig),
		"publicKey": publicKey,
		"address":   address,
		"included":  gin.H{"plan": "pro"},
	}
	w, verified := doJSON(t, router, http.MethodPost, "/addrauth/verifyChallenge", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, address, verified["address"])
	sessionToken := verified["token"].(string)

	// Single-use: the same signed challenge cannot be redeemed twice
	w, replay := doJSON(t, router, http.MethodPost, "/addrauth/verifyChallenge", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Challenge already used", replay["error"])

	w, check := doJSON(t, router, http.MethodPost, "/addrauth/verifyJWT", gin.H{"jwt": sessionToken}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, check["valid"])
	claims := check["claims"].(map[string]any)
	assert.Equal(t, address, claims["address"])
	assert.Equal(t, map[string]any{"plan": "pro"}, claims["included"])

	w, me := doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": "Bearer " + sessionToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, address, me["address"])
}

func TestVerifyChallengeErrors(t *testing.T) {
	var result bool
	var capErr error
	router := newTestRouter(t, ports.SignatureVerifierFunc(func(ctx context.Context, challenge, signature, publicKey, address string) (bool, error) {
		return result, capErr
	}))

	newToken := func() string {
		_, created := doJSON(t, router, http.MethodPost, "/addrauth/create", gin.H{"address": "addr1"}, nil)
		return created["token"].(string)
	}

	tests := []struct {
		name       string
		body       any
		result     bool
		capErr     error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			body:       gin.H{"token": "x"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "included is not an object",
			body:       gin.H{"token": "x", "signature": "s", "publicKey": "p", "address": "a", "included": 123},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request",
		},
		{
			name:       "invalid token",
			body:       gin.H{"token": "garbage", "signature": "s", "publicKey": "p", "address": "addr1"},
			result:     true,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid token",
		},
		{
			name:       "rejected signature",
			body:       gin.H{"token": newToken(), "signature": "s", "publicKey": "p", "address": "addr1"},
			result:     false,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid signature",
		},
		{
			name:       "verifier failure",
			body:       gin.H{"token": newToken(), "signature": "s", "publicKey": "p", "address": "addr1"},
			capErr:     errors.New("node unreachable"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, capErr = tt.result, tt.capErr

			w, resp := doJSON(t, router, http.MethodPost, "/addrauth/verifyChallenge", tt.body, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}
}

func TestVerifyJWTErrors(t *testing.T) {
	router := newTestRouter(t, ports.SignatureVerifierFunc(func(ctx context.Context, challenge, signature, publicKey, address string) (bool, error) {
		return true, nil
	}))

	w, resp := doJSON(t, router, http.MethodPost, "/addrauth/verifyJWT", gin.H{"jwt": "garbage"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, resp["valid"])
	assert.Equal(t, "Invalid token", resp["error"])

	w, _ = doJSON(t, router, http.MethodPost, "/addrauth/verifyJWT", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, ports.SignatureVerifierFunc(func(ctx context.Context, challenge, signature, publicKey, address string) (bool, error) {
		return false, nil
	}))

	// Anyone can obtain a challenge token for any address without signing
	_, created := doJSON(t, router, http.MethodPost, "/addrauth/create", gin.H{"address": "0xVictim"}, nil)
	challengeToken := created["token"].(string)
	require.NotEmpty(t, challengeToken)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "invalid token", header: "Bearer garbage"},
		{name: "challenge token", header: "Bearer " + challengeToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": tt.header})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotContains(t, resp, "address")
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: core.NewValidationError("address", "must be a non-empty string"), status: http.StatusBadRequest},
		{err: core.ErrTokenExpired, status: http.StatusUnauthorized},
		{err: core.ErrTokenInvalid, status: http.StatusUnauthorized},
		{err: core.ErrChallengeConsumed, status: http.StatusUnauthorized},
		{err: core.ErrInvalidSignature, status: http.StatusUnauthorized},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}
