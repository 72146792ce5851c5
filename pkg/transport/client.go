// Package transport implements the broker's two Unix-domain-socket legs:
// an outbound HTTP client used to deliver published messages to subscriber
// endpoints, and an inbound HTTP server used to receive dispatched requests
// on the broker's own socket (spec.md §6).
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"
)

const (
	// DialTimeout bounds the time spent establishing the unix connection.
	DialTimeout = 1 * time.Second
	// RequestTimeout bounds the full round trip, including the handler's
	// own processing time on the remote end.
	RequestTimeout = 20 * time.Second
)

// Client delivers POST requests to peers listening on Unix-domain sockets.
// A single Client is shared across deliveries; the target socket for a
// given call is threaded through the request context rather than baked
// into the *http.Transport, so one Client serves every peer.
type Client struct {
	httpClient *http.Client
}

type socketPathKey struct{}

// NewClient returns a Client ready to dial arbitrary peer sockets. Each
// delivery owns its connection exclusively (spec.md §5: "Each deliver owns
// its transport handle exclusively and releases it on all exit paths") —
// keep-alives are disabled so the transport never hands a connection
// dialed to one socket back out for a request addressed to another.
func NewClient() *Client {
	dialer := &net.Dialer{Timeout: DialTimeout}
	return &Client{
		httpClient: &http.Client{
			Timeout: RequestTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					socketPath, _ := ctx.Value(socketPathKey{}).(string)
					return dialer.DialContext(ctx, "unix", socketPath)
				},
			},
		},
	}
}

// Post delivers body as the request body of a POST to path on the peer
// listening at socketPath, returning the response status code and body.
// Errors are classified: a dial failure becomes lsserrors.ErrUnreachable,
// an expired deadline becomes lsserrors.ErrTimeout.
func (c *Client) Post(ctx context.Context, socketPath, path string, body []byte) (int, []byte, error) {
	dialCtx := context.WithValue(ctx, socketPathKey{}, socketPath)

	req, err := http.NewRequestWithContext(dialCtx, http.MethodPost, "http://unix"+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, lsserrors.Wrap("build delivery request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classify(socketPath, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, lsserrors.Wrap("read delivery response", err)
	}
	return resp.StatusCode, respBody, nil
}

// classify maps a transport-level failure to the sentinel errors the
// publish pipeline's retry/eviction decision (spec.md §4.5(d)) switches on.
func classify(socketPath string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return lsserrors.Wrap("deliver to "+socketPath, lsserrors.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return lsserrors.Wrap("deliver to "+socketPath, lsserrors.ErrTimeout)
	}
	return lsserrors.Wrap("deliver to "+socketPath, lsserrors.ErrUnreachable)
}
