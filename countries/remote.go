package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/loadkit/loadable"
)

// DefaultBaseURL is the public REST Countries v2 endpoint.
const DefaultBaseURL = "https://restcountries.com/v2"

const listFields = "alpha2Code,name,region,capital,population"

// Client fetches country data over HTTP. It satisfies
// loadable.RemoteSource[Country, Details]; failures surface as NetworkError
// (transport, non-2xx status) or DecodingError (malformed payload).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, e.g. to set timeouts
// or inject a test transport.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a client against baseURL; empty means DefaultBaseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireCountry matches the REST Countries v2 payload shape.
type wireCountry struct {
	Alpha2Code string  `json:"alpha2Code"`
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	Capital    string  `json:"capital"`
	Population int64   `json:"population"`
	Area       float64 `json:"area"`
	Flag       string  `json:"flag"`
	Borders    []string `json:"borders"`
	Currencies []struct {
		Code string `json:"code"`
	} `json:"currencies"`
	Languages []struct {
		Name string `json:"name"`
	} `json:"languages"`
}

// FetchList downloads the full country list.
func (c *Client) FetchList(ctx context.Context) ([]Country, error) {
	var wire []wireCountry
	if err := c.getJSON(ctx, "/all?fields="+listFields, &wire); err != nil {
		return nil, err
	}
	list := make([]Country, 0, len(wire))
	for _, w := range wire {
		list = append(list, Country{
			Code:       w.Alpha2Code,
			Name:       w.Name,
			Region:     w.Region,
			Capital:    w.Capital,
			Population: w.Population,
		})
	}
	return list, nil
}

// FetchDetails downloads the expanded record for one alpha-2 country code.
func (c *Client) FetchDetails(ctx context.Context, code string) (Details, error) {
	var w wireCountry
	if err := c.getJSON(ctx, "/alpha/"+url.PathEscape(code), &w); err != nil {
		return Details{}, err
	}
	details := Details{
		Code:       w.Alpha2Code,
		Name:       w.Name,
		Region:     w.Region,
		Capital:    w.Capital,
		Population: w.Population,
		Area:       w.Area,
		Borders:    w.Borders,
		FlagURL:    w.Flag,
	}
	for _, currency := range w.Currencies {
		details.Currencies = append(details.Currencies, currency.Code)
	}
	for _, lang := range w.Languages {
		details.Languages = append(details.Languages, lang.Name)
	}
	return details, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &loadable.NetworkError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &loadable.NetworkError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &loadable.NetworkError{Err: fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &loadable.DecodingError{Err: err}
	}
	return nil
}

var _ loadable.RemoteSource[Country, Details] = (*Client)(nil)
