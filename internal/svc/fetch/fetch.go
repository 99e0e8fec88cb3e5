// If you are AI: This file implements the byte fetcher that resolves image locators.
// Supported locators: http(s) URLs, data: URLs, and, when enabled, file: URLs and bare filesystem paths.

package fetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrTooLarge is wrapped by TransportError when a body exceeds the size limit.
var ErrTooLarge = errors.New("body exceeds size limit")

// ErrLocalDisabled is wrapped by TransportError when a filesystem locator is refused.
var ErrLocalDisabled = errors.New("local file locators are disabled")

// ErrMalformedLocator is wrapped by TransportError when a locator cannot be parsed.
var ErrMalformedLocator = errors.New("malformed locator")

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 32 << 20
	DefaultUserAgent = "animage/1.0"
)

// TransportError reports a failure to obtain the bytes behind a locator.
type TransportError struct {
	Locator string
	Status  int // HTTP status, 0 when not applicable
	Err     error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: http status %d", e.Locator, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	// AllowLocal permits file: URLs and bare filesystem paths.
	AllowLocal bool
	// Client overrides the HTTP client; its Timeout is left untouched.
	Client *http.Client
}

// Fetcher resolves locators to encoded bytes.
// Lock expectations: safe for concurrent use; holds no mutable state.
type Fetcher struct {
	client    *http.Client
	maxBytes   int64
	userAgent  string
	allowLocal bool
}

// New creates a fetcher, filling zero options with defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:     client,
		maxBytes:   opts.MaxBytes,
		userAgent:  opts.UserAgent,
		allowLocal: opts.AllowLocal,
	}
}

// Fetch returns the bytes behind locator. Every failure is a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	var (
		data   []byte
		status int
		err    error
	)

	switch {
	case hasScheme(locator, "http"), hasScheme(locator, "https"):
		data, status, err = f.fetchHTTP(ctx, locator)
	case hasScheme(locator, "data"):
		data, err = decodeDataURL(locator)
	case !f.allowLocal:
		err = ErrLocalDisabled
	case hasScheme(locator, "file"):
		var u *url.URL
		u, err = url.Parse(locator)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedLocator, err)
			break
		}
		data, err = f.readFile(u.Path)
	default:
		data, err = f.readFile(locator)
	}

	if err != nil || status != 0 {
		return nil, &TransportError{Locator: redact(locator), Status: status, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &TransportError{Locator: redact(locator), Err: ErrTooLarge}
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, locator string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, nil
	}
	if resp.ContentLength > f.maxBytes {
		return nil, 0, ErrTooLarge
	}
	data, err := f.readLimited(resp.Body)
	return data, 0, err
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.readLimited(file)
}

// readLimited reads at most maxBytes+1 bytes so oversize bodies are detected without reading them whole.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, f.maxBytes+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > f.maxBytes {
		return nil, ErrTooLarge
	}
	return buf.Bytes(), nil
}

// decodeDataURL decodes data:[<mime>][;base64],<payload>.
func decodeDataURL(locator string) ([]byte, error) {
	header, payload, ok := strings.Cut(locator[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: data url without payload", ErrMalformedLocator)
	}

	if strings.HasSuffix(strings.ToLower(header), ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers omit padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
		}
		return data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
	}
	return []byte(text), nil
}

func hasScheme(locator, scheme string) bool {
	return len(locator) > len(scheme) && locator[len(scheme)] == ':' &&
		strings.EqualFold(locator[:len(scheme)], scheme)
}

// redact keeps data: locators out of error messages.
func redact(locator string) string {
	if hasScheme(locator, "data") {
		header, _, _ := strings.Cut(locator, ",")
		return header + ",..."
	}
	return locator
}
