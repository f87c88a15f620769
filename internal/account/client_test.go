package account

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserData = `{
	"uid": 123456,
	"tokentype": "token",
	"token": "abc123token",
	"rruid": "rr0123456789",
	"region": "eu",
	"countrycode": "45",
	"country": "DK",
	"nickname": "hugo",
	"rriot": {
		"u": "user123",
		"s": "secret456",
		"h": "hash789",
		"k": "key000",
		"r": {
			"r": "EU",
			"a": "https://api-eu.example.com",
			"m": "ssl://mqtt-eu.example.com:8883",
			"l": "https://wood-eu.example.com"
		}
	}
}`

// newTestClient returns a client pointed at the test server with fast
// retries. Tests that consume the shared code-request limiter use a
// username of their own so they cannot throttle each other.
func newTestClient(username, serverURL string) *Client {
	c := NewClient(username)
	c.GlobalBaseURL = serverURL
	c.SetRetry(2, 10*time.Millisecond)
	c.MaxRetryDelay = 20 * time.Millisecond
	return c
}

func TestResolveBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, endpointGetURLByEmail, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("email"))
		assert.NotEmpty(t, r.Header.Get("header_clientid"))

		fmt.Fprintf(w, `{"code":200,"msg":"success","data":{"url":"https://region.example.com/"}}`)
	}))
	defer server.Close()

	client := newTestClient("user@example.com", server.URL)
	require.NoError(t, client.ResolveBaseURL(context.Background()))

	// Trailing slash is stripped, result is cached
	assert.Equal(t, "https://region.example.com", client.BaseURL())
	require.NoError(t, client.ResolveBaseURL(context.Background()))
}

func TestRequestCode(t *testing.T) {
	var codeRequests atomic.Int32

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc(endpointGetURLByEmail, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":{"url":%q}}`, server.URL)
	})
	mux.HandleFunc(endpointSendEmailCode, func(w http.ResponseWriter, r *http.Request) {
		codeRequests.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "codes@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "auth", r.PostForm.Get("type"))
		fmt.Fprint(w, `{"code":200,"msg":"success","data":null}`)
	})

	client := newTestClient("codes@example.com", server.URL)
	require.NoError(t, client.RequestCode(context.Background()))
	assert.Equal(t, int32(1), codeRequests.Load())
	assert.Equal(t, server.URL, client.BaseURL())
}

func TestRequestCodeRateLimited(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc(endpointGetURLByEmail, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":{"url":%q}}`, server.URL)
	})
	mux.HandleFunc(endpointSendEmailCode, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"msg":"success","data":null}`)
	})

	client := newTestClient("throttle@example.com", server.URL)
	require.NoError(t, client.RequestCode(context.Background()))

	// Immediate second request must be refused locally
	err := client.RequestCode(context.Background())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestRequestCodeRateLimitSharedAcrossClients(t *testing.T) {
	var codeRequests atomic.Int32

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc(endpointGetURLByEmail, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":{"url":%q}}`, server.URL)
	})
	mux.HandleFunc(endpointSendEmailCode, func(w http.ResponseWriter, r *http.Request) {
		codeRequests.Add(1)
		fmt.Fprint(w, `{"code":200,"msg":"success","data":null}`)
	})

	first := newTestClient("relink@example.com", server.URL)
	require.NoError(t, first.RequestCode(context.Background()))

	// A brand-new client for the same account is still throttled: the
	// limiter outlives any one client instance.
	second := newTestClient("relink@example.com", server.URL)
	err := second.RequestCode(context.Background())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(1), codeRequests.Load())
}

func TestCodeLogin(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc(endpointLoginWithCode, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "user@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "123456", r.PostForm.Get("verifycode"))
		assert.Equal(t, "AUTH_EMAIL_CODE", r.PostForm.Get("verifycodetype"))
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":%s}`, testUserData)
	})

	client := newTestClient("user@example.com", server.URL)
	client.SetBaseURL(server.URL)

	userData, err := client.CodeLogin(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, 123456, userData.UID)
	assert.Equal(t, "abc123token", userData.Token)
	assert.Equal(t, "rr0123456789", userData.RRUID)
	assert.Equal(t, "eu", userData.Region)
	require.NotNil(t, userData.RRiot)
	assert.Equal(t, "user123", userData.RRiot.UserID)
	assert.Equal(t, "ssl://mqtt-eu.example.com:8883", userData.RRiot.Endpoints.MQTT)
}

func TestCodeLoginRejectedCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":2018,"msg":"verification code error","data":null}`)
	}))
	defer server.Close()

	client := newTestClient("user@example.com", server.URL)
	client.SetBaseURL(server.URL)

	_, err := client.CodeLogin(context.Background(), "000000")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.False(t, IsRetryable(err))
}

func TestCodeLoginRequiresBaseURL(t *testing.T) {
	client := NewClient("user@example.com")

	_, err := client.CodeLogin(context.Background(), "123456")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestCodeLoginEmptyCode(t *testing.T) {
	client := NewClient("user@example.com")
	client.SetBaseURL("http://localhost:1")

	_, err := client.CodeLogin(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestPostRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"code":200,"msg":"success","data":%s}`, testUserData)
	}))
	defer server.Close()

	client := newTestClient("user@example.com", server.URL)
	client.SetBaseURL(server.URL)

	userData, err := client.CodeLogin(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, "abc123token", userData.Token)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestPostDoesNotRetryAuthErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient("user@example.com", server.URL)
	client.SetBaseURL(server.URL)

	_, err := client.CodeLogin(context.Background(), "123456")
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth error", NewAuthError("rejected"), "rejected the request"},
		{"rate limited", NewRateLimitedError("too soon"), "too recently"},
		{"api error", NewAPIError(500, "boom"), "code 500"},
		{"plain error", fmt.Errorf("boom"), "unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetTroubleshootingHint(tt.err), tt.want)
		})
	}
}
