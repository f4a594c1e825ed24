// Package api is the transport client for the arbitrage backend REST API.
//
// Two base paths are served: the legacy /api/v1 (auth, portfolio, trading,
// AI) and the current /api/v2 (engine, arbitrage, operations). Every request
// carries the session bearer token. A 401 from any endpoint invalidates the
// session; every other failure is reported through the notifier and returned.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/arb-console/internal/config"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/notify"
	"github.com/rxtech-lab/arb-console/internal/session"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"go.uber.org/zap"
)

// DefaultErrorMessage is shown when the backend gives no detail.
const DefaultErrorMessage = "An error occurred"

// maxErrorBody caps how much of a streamed error body is read for its detail.
const maxErrorBody = 64 << 10

// InvalidateReasonUnauthorized is passed to session listeners after a 401.
const InvalidateReasonUnauthorized = "unauthorized"

// Client talks to the backend.
type Client struct {
	v1       *resty.Client
	v2       *resty.Client
	session  *session.Session
	notifier notify.Notifier
	logger   *logger.Logger
}

// NewClient creates a Client for the API at cfg.APIURL.
func NewClient(cfg config.Config, sess *session.Session, notifier notify.Notifier, log *logger.Logger) *Client {
	if notifier == nil {
		notifier = notify.Nop{}
	}

	c := &Client{
		v1:       nil,
		v2:       nil,
		session:  sess,
		notifier: notifier,
		logger:   log.Named("api"),
	}

	c.v1 = c.newResty(cfg, cfg.V1BaseURL())
	c.v2 = c.newResty(cfg, cfg.V2BaseURL())

	return c
}

func (c *Client) newResty(cfg config.Config, baseURL string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(cfg.RequestTimeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.OnBeforeRequest(c.attachToken)

	return client
}

func (c *Client) attachToken(_ *resty.Client, req *resty.Request) error {
	if c.session == nil {
		return nil
	}

	if token := c.session.AccessToken(); token != "" {
		req.SetAuthToken(token)
	}

	return nil
}

// call describes one request.
type call struct {
	client *resty.Client
	method string
	path   string
	query  map[string]string
	body   any
	result any
	// quiet suppresses notifications, for best-effort calls.
	quiet bool
	// raw leaves the response body unread; the caller must close it.
	raw bool
}

func (c *Client) execute(ctx context.Context, rc call) (*resty.Response, error) {
	req := rc.client.R().SetContext(ctx)

	if len(rc.query) > 0 {
		req.SetQueryParams(rc.query)
	}

	if rc.body != nil {
		req.SetBody(rc.body)
	}

	if rc.raw {
		req.SetDoNotParseResponse(true)
	}

	resp, err := req.Execute(rc.method, rc.path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeRequestFailed, "request cancelled", ctx.Err())
		}

		c.logger.Warn("request failed", zap.String("method", rc.method), zap.String("path", rc.path), zap.Error(err))
		c.notifyError(rc, DefaultErrorMessage)

		return nil, errors.Wrapf(errors.ErrCodeRequestFailed, err, "%s %s failed", rc.method, rc.path)
	}

	if resp.IsError() {
		return nil, c.handleErrorResponse(rc, resp)
	}

	if rc.result != nil && !rc.raw {
		if err := json.Unmarshal(resp.Body(), rc.result); err != nil {
			c.logger.Warn("failed to decode response", zap.String("path", rc.path), zap.Error(err))
			c.notifyError(rc, DefaultErrorMessage)

			return nil, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to decode %s response", rc.path)
		}
	}

	return resp, nil
}

func (c *Client) handleErrorResponse(rc call, resp *resty.Response) error {
	body := resp.Body()
	if rc.raw && resp.RawBody() != nil {
		defer resp.RawBody().Close()

		body, _ = io.ReadAll(io.LimitReader(resp.RawBody(), maxErrorBody))
	}

	detail := DetailMessage(body)

	c.logger.Debug("backend returned an error",
		zap.String("method", rc.method),
		zap.String("path", rc.path),
		zap.Int("status", resp.StatusCode()),
		zap.String("detail", detail),
	)

	if resp.StatusCode() == http.StatusUnauthorized {
		if c.session != nil {
			c.session.Invalidate(InvalidateReasonUnauthorized)
		}

		c.notifyError(rc, detail)

		return errors.Wrap(errors.ErrCodeUnauthorized, "session expired, please log in again", errors.NewAPIError(resp.StatusCode(), detail))
	}

	c.notifyError(rc, detail)

	return errors.NewAPIError(resp.StatusCode(), detail)
}

func (c *Client) notifyError(rc call, message string) {
	if rc.quiet {
		return
	}

	c.notifier.Error(message)
}

// DetailMessage extracts the human readable "detail" of an error body.
// Validation errors carry a list of objects; their "msg" fields are joined.
func DetailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}

	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || len(envelope.Detail) == 0 {
		return DefaultErrorMessage
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		if text == "" {
			return DefaultErrorMessage
		}

		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}

		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if string(envelope.Detail) == "null" {
		return DefaultErrorMessage
	}

	return string(envelope.Detail)
}

func (c *Client) get(ctx context.Context, client *resty.Client, path string, query map[string]string, result any) error {
	_, err := c.execute(ctx, call{client: client, method: http.MethodGet, path: path, query: query, body: nil, result: result, quiet: false, raw: false})

	return err
}

func (c *Client) post(ctx context.Context, client *resty.Client, path string, query map[string]string, body any, result any) error {
	_, err := c.execute(ctx, call{client: client, method: http.MethodPost, path: path, query: query, body: body, result: result, quiet: false, raw: false})

	return err
}

// userMessage returns the message of a coded error without its cause chain.
func userMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}

	return err.Error()
}
