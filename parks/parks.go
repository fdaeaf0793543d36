// Package parks is a client for the National Park Service data API.
package parks

import (
	"context"
	"net/url"
	"strings"

	"github.com/teilomillet/trailhead/internal/fetch"
	"github.com/teilomillet/trailhead/types"
	"github.com/teilomillet/trailhead/utils"
)

// Park is a park as listed by /parks.
type Park struct {
	Name string `json:"fullName"`
	Code string `json:"parkCode"`
}

// Activity is one entry of a park's /thingstodo list.
type Activity struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type Client struct {
	client   *fetch.Client
	endpoint string
	apiKey   string
	logger   utils.Logger
}

// NewClient returns an NPS client. endpoint is the API root, e.g.
// https://developer.nps.gov/api/v1.
func NewClient(client *fetch.Client, endpoint, apiKey string, logger utils.Logger) *Client {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Client{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Parks lists the parks in a state, in API order.
func (c *Client) Parks(ctx context.Context, stateCode string) ([]Park, error) {
	var resp struct {
		Data []Park `json:"data"`
	}
	if err := c.get(ctx, "/parks", url.Values{"stateCode": {stateCode}}, &resp); err != nil {
		return nil, types.NewError(types.KindUpstreamUnavailable, "parks.list", err)
	}
	c.logger.Debug("Fetched parks", "state", stateCode, "count", len(resp.Data))
	return resp.Data, nil
}

// ThingsToDo lists the activities of one park, in API order.
func (c *Client) ThingsToDo(ctx context.Context, parkCode string) ([]Activity, error) {
	var resp struct {
		Data []Activity `json:"data"`
	}
	if err := c.get(ctx, "/thingstodo", url.Values{"parkCode": {parkCode}}, &resp); err != nil {
		return nil, types.NewError(types.KindUpstreamUnavailable, "parks.thingstodo", err)
	}
	c.logger.Debug("Fetched things to do", "park", parkCode, "count", len(resp.Data))
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("api_key", c.apiKey)
	return c.client.GetJSON(ctx, c.endpoint+path, query, map[string]string{"X-Api-Key": c.apiKey}, out)
}
