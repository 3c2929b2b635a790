package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_ForwardsWithBasicAuth(t *testing.T) {
	var gotPath, gotQuery, gotUser, gotPass string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUser, gotPass, _ = r.BasicAuth()
		w.Header().Set("WWW-Authenticate", `Basic realm="gps"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"Code":"G1"}]`))
	}))
	defer upstream.Close()

	gw, err := New(upstream.URL+"/api/v1/", "api", "secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle/V1/trips?from=2024-01-01T00:00:00", nil)
	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/api/v1/vehicle/V1/trips", gotPath)
	assert.Equal(t, "from=2024-01-01T00:00:00", gotQuery)
	assert.Equal(t, "api", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Empty(t, rr.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `[{"Code":"G1"}]`, rr.Body.String())
}

func TestGateway_ForwardsBodyOnPost(t *testing.T) {
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	gw, err := New(upstream.URL, "api", "secret")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/things", strings.NewReader(`{"a":1}`))
	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestGateway_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	gw, err := New(url, "api", "secret")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGateway_Preflight(t *testing.T) {
	gw, err := New("http://127.0.0.1:1", "api", "secret")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	gw.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/v1/groups", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
