package contacts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-datepicker/internal/config"
)

// VCardFetcher retrieves a remote vCard stream. Tests substitute their own.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads address books over HTTP(S) with optional Basic Auth.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher bounded by config.HTTPTimeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch opens target and returns its body, capped at config.MaxHTTPResponseSize.
//
// Credentials embedded in the URL are used when user and pass are both empty;
// they are never sent as part of the request line. A server answering with an
// HTML page (typically a login or captive portal) is reported as an error
// rather than decoded as an empty address book.
func (f *HTTPFetcher) Fetch(ctx context.Context, target, user, pass string) (io.ReadCloser, error) {
	req, err := newVCardRequest(ctx, target, user, pass)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeLocation(target)),
	)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}
	if err := checkVCardResponse(resp, log); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	log.Info(config.MsgFetchStart, slog.Int64(config.LogKeyLength, resp.ContentLength))

	return cappedBody{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, nil
}

func newVCardRequest(ctx context.Context, target, user, pass string) (*http.Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	if u.User != nil {
		if user == "" && pass == "" {
			user = u.User.Username()
			pass, _ = u.User.Password()
		}
		u.User = nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.AcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	return req, nil
}

// checkVCardResponse accepts a 200 whose media type is anything but a web page.
// Many servers label vCards text/plain or application/octet-stream, so only
// HTML is refused.
func checkVCardResponse(resp *http.Response, log *slog.Logger) error {
	if resp.StatusCode != http.StatusOK {
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return fmt.Errorf("%s: %s", config.ErrStatus, resp.Status)
	}

	ct := resp.Header.Get(config.HeaderContentType)
	if ct == "" {
		return nil
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		// Left to the vCard decoder.
		return nil
	}
	if media == config.MimeTextHTML || media == config.MimeXHTML {
		log.Warn(config.MsgFetchType, slog.String(config.LogKeyMime, media))
		return fmt.Errorf("%s: %s", config.ErrContentType, media)
	}
	return nil
}

// cappedBody reads through a LimitReader but closes the real response body.
type cappedBody struct {
	io.Reader
	io.Closer
}
