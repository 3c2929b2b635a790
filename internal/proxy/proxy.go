package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Prefix is the local path prefix forwarded to the upstream API.
const Prefix = "/api/v1"

// Gateway forwards Prefix requests to the GPS API with Basic auth so the
// browser never holds the credentials.
type Gateway struct {
	target   *url.URL
	username string
	password string
	rp       *httputil.ReverseProxy
}

// New creates a gateway for the upstream base URL (e.g. https://host/api/v1).
func New(baseURL, username, password string) (*Gateway, error) {
	target, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	g := &Gateway{target: target, username: username, password: password}
	g.rp = &httputil.ReverseProxy{
		Rewrite:        g.rewrite,
		ModifyResponse: modifyResponse,
		ErrorHandler:   errorHandler,
	}
	return g, nil
}

func (g *Gateway) rewrite(pr *httputil.ProxyRequest) {
	suffix := strings.TrimPrefix(pr.In.URL.Path, Prefix)
	out := pr.Out
	out.URL.Scheme = g.target.Scheme
	out.URL.Host = g.target.Host
	out.URL.Path = g.target.Path + suffix
	out.URL.RawPath = ""
	out.URL.RawQuery = pr.In.URL.RawQuery
	out.Host = g.target.Host

	out.Header.Del("Cookie")
	out.Header.Del("Origin")
	out.Header.Del("Referer")
	out.SetBasicAuth(g.username, g.password)
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}
	if out.Method == http.MethodGet || out.Method == http.MethodHead {
		out.Body = nil
		out.ContentLength = 0
	}
}

// modifyResponse hides the upstream auth challenge so browsers don't pop a
// credential dialog.
func modifyResponse(resp *http.Response) error {
	resp.Header.Del("WWW-Authenticate")
	resp.Header.Set("Access-Control-Allow-Origin", "*")
	return nil
}

func errorHandler(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithField("path", r.URL.Path).Error("Upstream request failed")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	http.Error(w, "Upstream request failed", http.StatusBadGateway)
}

// ServeHTTP implements http.Handler.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	g.rp.ServeHTTP(w, r)
}
