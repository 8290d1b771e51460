package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	platformerrors "github.com/jmgilman/go/errors"

	"hotcache/internal/storage"
)

const maxBody = 32 << 20

// HTTP fetches the entry list as a JSON array from an upstream endpoint.
type HTTP struct {
	url    *url.URL
	client *http.Client
	header http.Header
}

func NewHTTP(srcURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(srcURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must have http or https scheme: %s", srcURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{url: u, client: client}, nil
}

func (s *HTTP) AddHeader(key, value string) {
	if s.header == nil {
		s.header = make(http.Header)
	}
	s.header.Add(key, value)
}

// LoadEntries performs one GET and decodes the body.
func (s *HTTP) LoadEntries(ctx context.Context) ([]storage.EntryRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return nil, err
	}
	for key, vals := range s.header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	req.Header.Add("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeNetwork, "fetch entries")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeNetwork, "read entries")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, platformerrors.Newf(platformerrors.CodeNetwork, "fetch entries: %s: %d %s",
			s.url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var rows []storage.EntryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return rows, nil
}

func (s *HTTP) String() string {
	return s.url.String()
}
