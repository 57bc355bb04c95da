package textra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestAccessURL(t *testing.T) {
	t.Parallel()

	opts := NewOptions().SetMode(ModeGeneral).SetLang("ja", "en")
	want := "https://mt-auto-minhon-mlt.ucri.jgn-x.jp/api/mt/general_ja_en/"
	if got := AccessURL(DefaultBaseURL, opts); got != want {
		t.Fatalf("unexpected url: got %s want %s", got, want)
	}
	if got := AccessURL(DefaultBaseURL+"/", opts); got != want {
		t.Fatalf("trailing slash should not change url: got %s", got)
	}
	if AccessURL(DefaultBaseURL, opts) != AccessURL(DefaultBaseURL, opts) {
		t.Fatalf("expected deterministic url")
	}

	claim := NewOptions().SetMode(ModePatentClaim).SetLang("zh-cn", "JA")
	if got := AccessURL("http://example.test/api/mt", claim); got != "http://example.test/api/mt/patent-claim_zh-CN_ja/" {
		t.Fatalf("unexpected patent claim url: %s", got)
	}
}

type recordingObserver struct {
	kinds []FailureKind
}

func (o *recordingObserver) ObserveTranslation(_ Mode, kind FailureKind, _ time.Duration) {
	o.kinds = append(o.kinds, kind)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, logs *bytes.Buffer) (*Client, *recordingObserver) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	if logs != nil {
		logger = zerolog.New(logs)
	}
	observer := &recordingObserver{}
	client := NewClient(Config{
		BaseURL:    srv.URL + "/api/mt",
		RetryDelay: time.Millisecond,
		Observer:   observer,
	}, logger)
	return client, observer
}

func testOptions(t *testing.T) *Options {
	t.Helper()

	opts, err := Configure("alice", "consumer-key", "consumer-secret", "general", "ja", "en")
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	return opts
}

func TestTranslateSuccess(t *testing.T) {
	t.Parallel()

	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/api/mt/general_ja_en/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("key"); got != "consumer-key" {
			t.Errorf("unexpected key: %q", got)
		}
		if got := r.PostForm.Get("name"); got != "alice" {
			t.Errorf("unexpected name: %q", got)
		}
		if got := r.PostForm.Get("type"); got != "json" {
			t.Errorf("unexpected type: %q", got)
		}
		if got := r.PostForm.Get("text"); got != "こんにちは" {
			t.Errorf("unexpected text: %q", got)
		}

		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "OAuth ") {
			t.Errorf("expected OAuth authorization header, got %q", auth)
		}
		for _, part := range []string{`oauth_consumer_key="consumer-key"`, `oauth_signature_method="HMAC-SHA1"`, `oauth_signature=`} {
			if !strings.Contains(auth, part) {
				t.Errorf("authorization header missing %s: %q", part, auth)
			}
		}
		if strings.Contains(auth, "oauth_token=") {
			t.Errorf("one-legged signing must not send a token: %q", auth)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"Hello"}}}`))
	}, nil)

	res := client.Translate(context.Background(), testOptions(t), "こんにちは")
	if !res.OK() {
		t.Fatalf("expected success, got %v", res.Err())
	}
	if res.Text != "Hello" || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(observer.kinds) != 1 || observer.kinds[0] != FailureNone {
		t.Fatalf("unexpected observed kinds: %v", observer.kinds)
	}
}

func TestTranslateTextBoundary(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"Hello"}}}`))
	}, nil)

	text, ok := client.TranslateText(context.Background(), testOptions(t), "x")
	if !ok || text != "Hello" {
		t.Fatalf("unexpected boundary result: %q %t", text, ok)
	}
}

func TestTranslateNon200IsProtocolFailure(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	client, observer := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, &logs)

	res := client.Translate(context.Background(), testOptions(t), "x")
	if res.OK() {
		t.Fatalf("expected failure")
	}
	if res.Kind() != FailureProtocol {
		t.Fatalf("unexpected kind: %s", res.Kind())
	}
	if res.StatusCode != http.StatusInternalServerError || res.Failure.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500 on result, got %+v", res)
	}
	if !strings.Contains(logs.String(), `"status":500`) {
		t.Fatalf("expected status code in log, got %s", logs.String())
	}
	if text, ok := client.TranslateText(context.Background(), testOptions(t), "x"); ok || text != "" {
		t.Fatalf("expected no result, got %q", text)
	}
	if observer.kinds[0] != FailureProtocol {
		t.Fatalf("unexpected observed kind: %s", observer.kinds[0])
	}
}

func TestTranslateMissingFieldsIsParseFailure(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultset":{}}`))
	}, nil)

	res := client.Translate(context.Background(), testOptions(t), "x")
	if res.Kind() != FailureParse {
		t.Fatalf("expected parse failure, got %s (%v)", res.Kind(), res.Err())
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", res.StatusCode)
	}
}

func TestTranslateUnsupportedCombinationSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"x"}}}`))
	}, nil)

	opts := NewOptions().SetUsername("alice").SetAPIKey("k").SetSecret("s").SetMode(ModePatentClaim).SetLang("fr", "es")
	res := client.Translate(context.Background(), opts, "bonjour")
	if res.Kind() != FailureUnsupported {
		t.Fatalf("expected unsupported failure, got %s", res.Kind())
	}
	if !errors.Is(res.Err(), ErrUnsupportedCombination) {
		t.Fatalf("expected ErrUnsupportedCombination, got %v", res.Err())
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request, got %d", hits.Load())
	}
}

func TestPackageTranslateRejectsBeforeNetwork(t *testing.T) {
	t.Parallel()

	opts := NewOptions().SetUsername("alice").SetAPIKey("k").SetSecret("s").SetMode(ModePatent).SetLang("fr", "en")
	text, ok := Translate(context.Background(), opts, "bonjour")
	if ok || text != "" {
		t.Fatalf("expected no result, got %q ok=%t", text, ok)
	}
	if _, ok := Translate(context.Background(), nil, "bonjour"); ok {
		t.Fatalf("expected nil options to fail")
	}
}

func TestTranslateIncompleteOptions(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {}, nil)

	res := client.Translate(context.Background(), NewOptions().SetMode(ModeGeneral), "x")
	if res.Kind() != FailureConfiguration || !errors.Is(res.Err(), ErrOptionsIncomplete) {
		t.Fatalf("expected incomplete options failure, got %v", res.Err())
	}
	if res := client.Translate(context.Background(), nil, "x"); res.Kind() != FailureConfiguration {
		t.Fatalf("expected configuration failure for nil options, got %s", res.Kind())
	}
}

func TestTranslateMissingSecretIsSigningFailure(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Errorf("unsigned request must not be sent")
	}, nil)

	opts := testOptions(t).SetSecret("")
	if res := client.Translate(context.Background(), opts, "x"); res.Kind() != FailureSigning {
		t.Fatalf("expected signing failure, got %s", res.Kind())
	}
}

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, fmt.Errorf("connection reset by peer")
	}
	return f.next.RoundTrip(req)
}

func TestTranslateRetriesTransportErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"Hello"}}}`))
	}))
	t.Cleanup(srv.Close)

	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	client := NewClient(Config{
		BaseURL:    srv.URL,
		Retries:    DefaultRetries,
		RetryDelay: time.Millisecond,
		HTTPClient: &http.Client{Transport: transport},
	}, zerolog.Nop())

	res := client.Translate(context.Background(), testOptions(t), "x")
	if !res.OK() || res.Text != "Hello" {
		t.Fatalf("expected success after retries, got %v", res.Err())
	}
	if got := transport.calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestTranslateGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	transport := &flakyTransport{failures: 100, next: http.DefaultTransport}
	client := NewClient(Config{
		BaseURL:    "http://127.0.0.1:1/api/mt",
		Retries:    DefaultRetries,
		RetryDelay: time.Millisecond,
		HTTPClient: &http.Client{Transport: transport},
	}, zerolog.Nop())

	res := client.Translate(context.Background(), testOptions(t), "x")
	if res.Kind() != FailureTransport {
		t.Fatalf("expected transport failure, got %s", res.Kind())
	}
	if got := transport.calls.Load(); got != DefaultRetries+1 {
		t.Fatalf("expected %d attempts, got %d", DefaultRetries+1, got)
	}
}

type failingTransport struct {
	err   error
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, f.err
}

func TestTranslateDoesNotRetryTimeouts(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
			_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"late"}}}`))
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:        srv.URL,
		ConnectTimeout: 50 * time.Millisecond,
		ReadTimeout:    50 * time.Millisecond,
		Retries:        DefaultRetries,
		RetryDelay:     time.Millisecond,
	}, zerolog.Nop())

	started := time.Now()
	res := client.Translate(context.Background(), testOptions(t), "x")
	elapsed := time.Since(started)

	if res.Kind() != FailureTransport {
		t.Fatalf("expected transport failure, got %s", res.Kind())
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt after timeout, got %d", got)
	}
	if elapsed >= 250*time.Millisecond {
		t.Fatalf("call outlived its connect+read budget: %s", elapsed)
	}
}

func TestTranslateDoesNotRetryDialFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"connection refused": &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
		"unknown host":       &net.DNSError{Err: "no such host", Name: "mt.invalid", IsNotFound: true},
	}

	for name, dialErr := range cases {
		dialErr := dialErr
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			transport := &failingTransport{err: dialErr}
			client := NewClient(Config{
				BaseURL:    "http://mt.invalid/api/mt",
				Retries:    DefaultRetries,
				RetryDelay: time.Millisecond,
				HTTPClient: &http.Client{Transport: transport},
			}, zerolog.Nop())

			res := client.Translate(context.Background(), testOptions(t), "x")
			if res.Kind() != FailureTransport {
				t.Fatalf("expected transport failure, got %s", res.Kind())
			}
			if got := transport.calls.Load(); got != 1 {
				t.Fatalf("expected 1 attempt, got %d", got)
			}
		})
	}
}

type headerTimeout struct{}

func (headerTimeout) Error() string   { return "timeout awaiting response headers" }
func (headerTimeout) Timeout() bool   { return true }
func (headerTimeout) Temporary() bool { return true }

func TestPermanentSendError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: fmt.Errorf("send: %w", context.Canceled), want: true},
		{name: "dial", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: true},
		{name: "dns", err: &net.DNSError{Err: "no such host"}, want: true},
		{name: "header timeout", err: &url.Error{Op: "Post", URL: "http://mt.invalid", Err: headerTimeout{}}, want: true},
		{name: "read reset", err: &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}, want: false},
		{name: "eof", err: io.ErrUnexpectedEOF, want: false},
	}

	for _, tc := range cases {
		if got := permanentSendError(tc.err); got != tc.want {
			t.Fatalf("%s: permanentSendError = %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestTranslateSkipCombinationCheckSendsIllegalTriple(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"hola"}}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:              srv.URL + "/api/mt",
		SkipCombinationCheck: true,
	}, zerolog.Nop())

	opts := NewOptions().SetUsername("alice").SetAPIKey("k").SetSecret("s").SetMode(ModePatentClaim).SetLang("fr", "es")
	if ok, _ := opts.IsCombinationValid(); ok {
		t.Fatalf("expected patent_claim fr -> es to be outside the table")
	}

	res := client.Translate(context.Background(), opts, "bonjour")
	if !res.OK() || res.Text != "hola" {
		t.Fatalf("expected success, got %v", res.Err())
	}
	if !strings.HasSuffix(res.URL, "/api/mt/patent-claim_fr_es/") {
		t.Fatalf("unexpected url: %s", res.URL)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", hits.Load())
	}

	if res := client.Translate(context.Background(), NewOptions().SetMode(ModeGeneral), "x"); res.Kind() != FailureConfiguration {
		t.Fatalf("incomplete options must still fail, got %s", res.Kind())
	}
}

func TestTranslateRateLimitWait(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"resultset":{"result":{"text":"Hello"}}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:           srv.URL,
		RequestsPerSecond: 0.01,
		RetryDelay:        time.Millisecond,
	}, zerolog.Nop())

	if res := client.Translate(context.Background(), testOptions(t), "x"); !res.OK() {
		t.Fatalf("first call should use the initial token, got %v", res.Err())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res := client.Translate(ctx, testOptions(t), "x")
	if res.Kind() != FailureTransport {
		t.Fatalf("expected transport failure while throttled, got %s", res.Kind())
	}
	if res.Failure.Op != "wait for rate limit" {
		t.Fatalf("unexpected op: %q", res.Failure.Op)
	}

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if res := client.Translate(cancelled, testOptions(t), "x"); res.Kind() != FailureTransport {
		t.Fatalf("expected transport failure for cancelled context, got %s", res.Kind())
	}

	if got := hits.Load(); got != 1 {
		t.Fatalf("throttled calls must not reach the server, got %d requests", got)
	}
}

func TestAccessURLNilOptions(t *testing.T) {
	t.Parallel()

	if got := AccessURL(DefaultBaseURL, nil); got != "" {
		t.Fatalf("expected empty url for nil options, got %q", got)
	}
}
