// Package buildbot is a read-only client for the XML-RPC status interface a
// buildbot master exposes under /all/xmlrpc.
package buildbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"net/url"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"

	bbErrors "github.com/buildbot-tools/bbinfo/internal/errors"
)

const (
	// rpcPath is where a master exposes its XML-RPC status interface.
	rpcPath = "/all/xmlrpc"

	// DefaultFetchDepth is how much history is requested per builder when no
	// depth is configured.
	DefaultFetchDepth = 25
)

// Client queries a buildbot master over XML-RPC. It performs no retries and
// keeps no cache; every call reflects the master's state at that moment.
// A Client is safe for concurrent use.
type Client struct {
	masterURL  string
	endpoint   string
	fetchDepth int
	transport  http.RoundTripper
}

// ClientOption is a function that modifies a Client
type ClientOption func(*Client)

// WithTransport sets the HTTP transport used for RPC requests
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithFetchDepth sets how many builds are requested per builder
func WithFetchDepth(depth int) ClientOption {
	return func(c *Client) {
		if depth > 0 {
			c.fetchDepth = depth
		}
	}
}

// NewClient creates a client for the master at the given URL.
func NewClient(masterURL string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		masterURL:  strings.TrimRight(masterURL, "/"),
		fetchDepth: DefaultFetchDepth,
	}

	for _, opt := range opts {
		opt(c)
	}

	parsed, err := url.Parse(c.masterURL + rpcPath)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, bbErrors.NewConfigurationError(err, fmt.Sprintf("invalid master URL %q", masterURL),
			"Run 'bbinfo configure' to set the master URL")
	}
	c.endpoint = parsed.String()

	return c, nil
}

// MasterURL returns the URL of the master this client talks to.
func (c *Client) MasterURL() string {
	return c.masterURL
}

// BuilderURL returns the web page for the named builder on this master.
func (c *Client) BuilderURL(name string) string {
	return BuilderURL(c.masterURL, name)
}

// ListBuilders returns the name of every builder the master knows about, in
// the order the master enumerates them.
func (c *Client) ListBuilders(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, "getAllBuilders", nil, &names); err != nil {
		return nil, bbErrors.NewSourceUnavailableError(err, "could not list builders",
			"Check that the master URL is correct and the master is reachable",
			"Run 'bbinfo configure' to change the master URL")
	}
	return names, nil
}

// ListBuilds returns recent builds of the named builder, at most the client's
// fetch depth. The slice order is whatever the master sent; callers needing a
// particular order must sort. Unknown builders yield a builder not found
// error, everything else a source error, both tagged with the builder name.
func (c *Client) ListBuilds(ctx context.Context, name string) ([]Build, error) {
	var rows [][]interface{}
	if err := c.call(ctx, "getLastBuilds", []interface{}{name, c.fetchDepth}, &rows); err != nil {
		// A fault means the master processed the call and refused it, which
		// for this method means the builder does not exist. Faults surface
		// as rpc.ServerError because the client is built on net/rpc.
		var serverErr rpc.ServerError
		if errors.As(err, &serverErr) {
			return nil, bbErrors.NewBuilderNotFoundError(err, name,
				"Run 'bbinfo builder list' to see the builders the master knows about")
		}
		return nil, bbErrors.ForBuilder(bbErrors.NewSourceUnavailableError(err, "could not fetch builds"), name)
	}

	builds := make([]Build, 0, len(rows))
	for _, row := range rows {
		build, err := decodeBuild(c.masterURL, row)
		if err != nil {
			return nil, bbErrors.ForBuilder(bbErrors.NewSourceUnavailableError(err, "malformed response from master"), name)
		}
		builds = append(builds, build)
	}
	return builds, nil
}

// call dispatches one RPC and waits for the reply or context cancellation.
// Every call gets its own RPC client over the shared transport: the codec
// under the hood serializes calls, so sharing one would defeat concurrent
// fetches. Connections are still pooled by the transport.
func (c *Client) call(ctx context.Context, method string, args interface{}, reply interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rpcClient, err := xmlrpc.NewClient(c.endpoint, c.transport)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		err := rpcClient.Call(method, args, reply)
		rpcClient.Close()
		done <- err
	}()

	select {
	case <-ctx.Done():
		// The abandoned call unwinds and closes its client on its own.
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// decodeBuild converts one getLastBuilds row into a Build. Rows are 9-tuples
// of builder name, number, start time, end time, branch, revision, result,
// summary lines and reason. Times are unix seconds, 0 meaning absent.
func decodeBuild(masterURL string, row []interface{}) (Build, error) {
	if len(row) < 9 {
		return Build{}, fmt.Errorf("build row has %d fields, want 9", len(row))
	}

	number, err := toInt(row[1])
	if err != nil {
		return Build{}, fmt.Errorf("build number: %w", err)
	}

	builder := toString(row[0])
	return Build{
		Builder:     builder,
		Number:      number,
		StartedAt:   toTime(row[2]),
		CompletedAt: toTime(row[3]),
		Branch:      toString(row[4]),
		Revision:    toString(row[5]),
		Status:      Status(toString(row[6])),
		Summary:     toStrings(row[7]),
		Reason:      toString(row[8]),
		WebURL:      BuildURL(masterURL, builder, number),
	}, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

// toTime converts a unix timestamp into a time. Masters send 0 for builds
// that have not finished; that becomes nil.
func toTime(v interface{}) *time.Time {
	var sec int64
	switch n := v.(type) {
	case int64:
		sec = n
	case float64:
		sec = int64(n)
	case time.Time:
		if n.IsZero() {
			return nil
		}
		t := n
		return &t
	default:
		return nil
	}

	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
