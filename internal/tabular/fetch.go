package tabular

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/insights-agent/internal/resilience"
)

// FetchOptions configures the export fetcher.
type FetchOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond throttles HTTP downloads. Exports can live on
	// shared crawler infrastructure that rate-limits aggressively.
	RequestsPerSecond float64
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.UserAgent == "" {
		o.UserAgent = "insights-agent/1.0"
	}
	if o.Timeout == 0 {
		o.Timeout = 60 * time.Second
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = 5
	}
	return o
}

// Fetcher downloads crawl exports over HTTP or FTP and parses them into
// Tables by file extension.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    FetchOptions
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts FetchOptions) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		opts:    opts,
	}
}

// FetchTable downloads the export at rawURL and parses it. The scheme
// picks the transport (http/https/ftp) and the extension picks the
// parser (.csv or .xlsx).
func (f *Fetcher) FetchTable(ctx context.Context, rawURL string) (*Table, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "tabular: parse export url")
	}

	var body io.ReadCloser
	switch u.Scheme {
	case "http", "https":
		body, err = f.fetchHTTP(ctx, rawURL)
	case "ftp":
		body, err = f.fetchFTP(ctx, u)
	default:
		return nil, eris.Errorf("tabular: unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	switch strings.ToLower(path.Ext(u.Path)) {
	case ".xlsx":
		data, readErr := io.ReadAll(body)
		if readErr != nil {
			return nil, eris.Wrap(readErr, "tabular: read export body")
		}
		return ParseXLSX(data, "")
	default:
		// Crawl exports without an extension are overwhelmingly CSV.
		return ParseCSV(body)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("tabular", "fetch export")

	return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (io.ReadCloser, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "tabular: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "tabular: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "tabular: fetch export")
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			err := eris.Errorf("tabular: unexpected status %d from %s", resp.StatusCode, rawURL)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		return resp.Body, nil
	})
}

// ftpReader ties the FTP data connection's lifetime to the reader so a
// single Close releases both.
type ftpReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpReader) Read(p []byte) (int, error) { return r.resp.Read(p) }

func (r *ftpReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "tabular: close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "tabular: quit ftp connection")
	}
	return nil
}

func (f *Fetcher) fetchFTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "21")
	}
	if u.Path == "" {
		return nil, eris.New("tabular: empty path in ftp url")
	}

	zap.L().Debug("fetching export over ftp",
		zap.String("host", host),
		zap.String("path", u.Path),
	)

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "tabular: ftp dial")
	}

	user, pass := "anonymous", "anonymous@"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "tabular: ftp login")
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "tabular: ftp retrieve")
	}

	return &ftpReader{resp: resp, conn: conn}, nil
}
