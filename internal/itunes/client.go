package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"artfetch/internal/fetch"
	"artfetch/internal/identity"
	"artfetch/internal/logging"
)

// Result is one catalog entry returned by the search endpoint.
type Result struct {
	WrapperType    string `json:"wrapperType"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	TrackName      string `json:"trackName"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

// Response is the search endpoint's JSON envelope.
type Response struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Getter issues a single HTTP GET and returns the response body.
type Getter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client searches the catalog through a rate-limit-aware getter.
type Client struct {
	getter  Getter
	baseURL string
	logger  *slog.Logger
}

func NewClient(getter Getter, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		getter:  getter,
		baseURL: baseURL,
		logger:  logging.WithComponent(logger, "itunes"),
	}
}

// Search runs one query. A body that is not valid JSON yields an empty
// response rather than an error; the catalog occasionally serves truncated
// payloads under load.
func (c *Client) Search(ctx context.Context, query Query) (Response, error) {
	body, err := c.getter.Fetch(ctx, query.URL(c.baseURL))
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warn("discarding malformed search response",
			logging.String("term", query.Term),
			logging.String("entity", query.Entity),
			logging.Error(err))
		return Response{}, nil
	}
	return response, nil
}

// Lookup runs the identity's queries in order and returns the first
// non-empty response along with the query that produced it. Rate-limit
// escalation aborts the lookup; any other fetch failure counts as an empty
// response and the next query is tried.
func (c *Client) Lookup(ctx context.Context, id identity.Identity) (Response, Query, error) {
	for _, query := range BuildQueries(id) {
		response, err := c.Search(ctx, query)
		if err != nil {
			if errors.Is(err, fetch.ErrRateLimited) {
				return Response{}, Query{}, err
			}
			c.logger.Warn("search query failed",
				logging.String("term", query.Term),
				logging.String("entity", query.Entity),
				logging.Error(err))
			continue
		}
		if len(response.Results) > 0 {
			c.logger.Debug("search returned results",
				logging.String("term", query.Term),
				logging.String("entity", query.Entity),
				logging.Int("results", response.ResultCount))
			return response, query, nil
		}
	}
	return Response{}, Query{}, nil
}
