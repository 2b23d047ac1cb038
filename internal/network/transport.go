package network

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// authTransport attaches the bearer token to every outgoing request.
type authTransport struct {
	next   http.RoundTripper
	tokens TokenProvider
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.next.RoundTrip(req)
	}
	token := CleanToken(t.tokens())
	if strings.TrimSpace(token) == "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)
	return t.next.RoundTrip(req)
}

// CleanToken drops every byte outside printable ASCII. Header values with
// control characters are rejected by net/http.
func CleanToken(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for i := 0; i < len(token); i++ {
		if c := token[i]; c >= 0x20 && c <= 0x7E {
			b.WriteByte(c)
		}
	}
	return b.String()
}

type loggingTransport struct {
	next http.RoundTripper
	log  logrus.FieldLogger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields := logrus.Fields{
		"method":   req.Method,
		"url":      req.URL.Redacted(),
		"duration": time.Since(start).String(),
	}
	if err != nil {
		t.log.WithFields(fields).WithError(err).Debug("request failed")
		return nil, err
	}
	fields["status"] = resp.StatusCode
	t.log.WithFields(fields).Debug("request completed")
	return resp, nil
}
