package textra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gomodule/oauth1/oauth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public TexTra machine-translation endpoint.
	DefaultBaseURL = "https://mt-auto-minhon-mlt.ucri.jgn-x.jp/api/mt"
	// DefaultConnectTimeout bounds dialing the endpoint.
	DefaultConnectTimeout = 2 * time.Minute
	// DefaultReadTimeout bounds waiting for the response.
	DefaultReadTimeout = 10 * time.Minute
	// DefaultRetries is the number of extra attempts after a transport error.
	DefaultRetries = 3

	defaultRetryDelay  = 500 * time.Millisecond
	maxResponseBytes   = 16 << 20
	maxErrorBodyLogged = 512
)

// Observer receives the outcome of every translation call.
type Observer interface {
	ObserveTranslation(mode Mode, kind FailureKind, latency time.Duration)
}

// Config controls the HTTP behavior of a Client. Zero values fall back to
// the defaults above.
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Retries is the number of extra attempts after a transport error.
	// Negative disables retrying.
	Retries    int
	RetryDelay time.Duration
	// RequestsPerSecond throttles outbound calls; 0 means unlimited.
	RequestsPerSecond float64
	// SkipCombinationCheck sends requests even for combinations missing
	// from the options' legality table.
	SkipCombinationCheck bool

	HTTPClient *http.Client
	Observer   Observer
}

// Client performs TexTra translation calls. It keeps no per-call state
// and may be shared between goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	limiter    *rate.Limiter
	skipCheck  bool
	observer   Observer
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		retries:    retries,
		retryDelay: retryDelay,
		limiter:    limiter,
		skipCheck:  cfg.SkipCombinationCheck,
		observer:   cfg.Observer,
		logger:     logger,
	}
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = readTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   connectTimeout + readTimeout,
	}
}

// AccessURL builds <base>/<mode slug>_<source>_<target>/ for opts. It
// returns "" for nil opts.
func AccessURL(baseURL string, opts *Options) string {
	if opts == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/" +
		opts.Mode().Slug() + "_" + opts.SourceLang() + "_" + opts.TargetLang() + "/"
}

// AccessURL builds the endpoint URL for opts against the client's base URL.
func (c *Client) AccessURL(opts *Options) string {
	return AccessURL(c.baseURL, opts)
}

var defaultClient = sync.OnceValue(func() *Client {
	return NewClient(Config{}, log.Logger)
})

// Translate calls the public endpoint with default settings, logging
// through the global zerolog logger.
func Translate(ctx context.Context, opts *Options, text string) (string, bool) {
	return defaultClient().TranslateText(ctx, opts, text)
}

// TranslateText is the plain boundary around Translate: the translated
// text and true, or "" and false when no translation is available.
func (c *Client) TranslateText(ctx context.Context, opts *Options, text string) (string, bool) {
	res := c.Translate(ctx, opts, text)
	if !res.OK() {
		return "", false
	}
	return res.Text, true
}

// Translate sends text to the endpoint selected by opts. It never returns
// an error value; failures are reported on the Result and logged.
func (c *Client) Translate(ctx context.Context, opts *Options, text string) Result {
	started := time.Now()
	res := c.translate(ctx, opts, text)
	res.Latency = time.Since(started)

	var mode Mode
	if opts != nil {
		mode = opts.Mode()
	}

	if res.Failure != nil {
		res.Failure.StatusCode = res.StatusCode
		c.logger.Warn().
			Err(res.Failure.Err).
			Str("kind", res.Failure.Kind.String()).
			Str("op", res.Failure.Op).
			Str("url", res.URL).
			Int("status", res.StatusCode).
			Msg("translation failed")
	} else {
		c.logger.Debug().
			Str("url", res.URL).
			Int("status", res.StatusCode).
			Dur("latency", res.Latency).
			Msg("translation succeeded")
	}

	if c.observer != nil {
		c.observer.ObserveTranslation(mode, res.Kind(), res.Latency)
	}
	return res
}

func (c *Client) translate(ctx context.Context, opts *Options, text string) Result {
	if opts == nil || !opts.Complete() {
		return failed(FailureConfiguration, "check combination", ErrOptionsIncomplete)
	}
	if !c.skipCheck {
		if err := opts.Validate(); err != nil {
			var textraErr *Error
			if errors.As(err, &textraErr) {
				return Result{Failure: textraErr}
			}
			return failed(FailureUnsupported, "check combination", err)
		}
	}

	accessURL := c.AccessURL(opts)
	c.logger.Debug().Str("url", accessURL).Msg("access url")

	resp, err := c.send(ctx, accessURL, opts.Username(), opts.APIKey(), opts.Secret(), text)
	if err != nil {
		res := Result{URL: accessURL}
		var textraErr *Error
		if errors.As(err, &textraErr) {
			res.Failure = textraErr
		} else {
			res.Failure = &Error{Kind: FailureTransport, Op: "send request", Err: err}
		}
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res := Result{URL: accessURL, StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLogged))
		res.Failure = &Error{
			Kind: FailureProtocol,
			Op:   "check status",
			Err:  fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		res.Failure = &Error{Kind: FailureTransport, Op: "read response", Err: err}
		return res
	}

	translated, err := ParseResponse(body)
	if err != nil {
		res.Failure = &Error{Kind: FailureParse, Op: "parse response", Err: err}
		return res
	}

	res.Text = translated
	return res
}

// send executes the signed request, retrying transient transport errors.
// Each attempt is signed afresh so nonces and timestamps are never reused.
func (c *Client) send(ctx context.Context, accessURL, username, apiKey, apiSecret, text string) (*http.Response, error) {
	var resp *http.Response

	err := retry.Do(
		func() error {
			req, err := c.buildRequest(ctx, accessURL, username, apiKey, apiSecret, text)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(&Error{Kind: FailureTransport, Op: "wait for rate limit", Err: err})
				}
			}
			r, err := c.httpClient.Do(req)
			if err != nil {
				sendErr := &Error{Kind: FailureTransport, Op: "send request", Err: err}
				if permanentSendError(err) {
					return retry.Unrecoverable(sendErr)
				}
				return sendErr
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retries+1)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info().Err(err).Uint("attempt", n+1).Str("url", accessURL).Msg("retrying translation request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// permanentSendError reports send failures another attempt cannot fix.
// A timeout has already used up the connect+read budget of the call, and
// a refused dial or unknown host does not change between attempts.
// Resets and early EOFs stay retryable.
func permanentSendError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// buildRequest assembles the form POST and signs it with one-legged OAuth1
// (consumer key and secret only, no token).
func (c *Client) buildRequest(ctx context.Context, accessURL, username, apiKey, apiSecret, text string) (*http.Request, error) {
	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("name", username)
	form.Set("type", "json")
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, accessURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Kind: FailureEncoding, Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if apiKey == "" || apiSecret == "" {
		return nil, &Error{Kind: FailureSigning, Op: "sign request", Err: fmt.Errorf("api key and secret are required")}
	}
	consumer := oauth.Client{
		Credentials: oauth.Credentials{Token: apiKey, Secret: apiSecret},
	}
	if err := consumer.SetAuthorizationHeader(req.Header, nil, http.MethodPost, req.URL, form); err != nil {
		return nil, &Error{Kind: FailureSigning, Op: "sign request", Err: err}
	}
	return req, nil
}
