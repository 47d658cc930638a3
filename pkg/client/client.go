package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naveenspark/tavola/pkg/domain"
)

// DefaultTimeout is the flat ceiling applied to every request.
const DefaultTimeout = 30 * time.Second

// Client is the restaurant API client. The session lives in an in-memory
// cookie jar, so every request forwards credentials and nothing touches disk.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the request logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New never fails with nil options
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// formData is a multipart payload: plain fields plus optional file parts.
type formData struct {
	fields []formField
	files  map[string]*domain.Upload
}

type formField struct {
	name, value string
}

func (f *formData) set(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

func (f *formData) attach(name string, u *domain.Upload) {
	if u == nil {
		return
	}
	if f.files == nil {
		f.files = map[string]*domain.Upload{}
	}
	f.files[name] = u
}

func (f *formData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.name, err)
		}
	}
	for name, u := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, u.Filename))
		h.Set("Content-Type", u.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := part.Write(u.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

// doRequest sends body as JSON, or as multipart when body is a *formData.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var (
		reqBody     io.Reader
		contentType = "application/json"
	)
	switch b := body.(type) {
	case nil:
	case *formData:
		r, ct, err := b.encode()
		if err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
		reqBody, contentType = r, ct
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode >= 400 {
		return decodeHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
