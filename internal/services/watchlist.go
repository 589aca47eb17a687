package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/cinex/internal/models"
)

// Watchlist fetches GET /watchlist.
func (c *Client) Watchlist(ctx context.Context) (*WatchlistList, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var list WatchlistList
	if err := c.do(ctx, http.MethodGet, "/watchlist", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// AddToWatchlist calls POST /watchlist/:id.
func (c *Client) AddToWatchlist(ctx context.Context, movieID int) (*WatchlistMutation, error) {
	return c.mutateWatchlist(ctx, http.MethodPost, movieID)
}

// RemoveFromWatchlist calls DELETE /watchlist/:id.
func (c *Client) RemoveFromWatchlist(ctx context.Context, movieID int) (*WatchlistMutation, error) {
	return c.mutateWatchlist(ctx, http.MethodDelete, movieID)
}

func (c *Client) mutateWatchlist(ctx context.Context, method string, movieID int) (*WatchlistMutation, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var result WatchlistMutation
	if err := c.do(ctx, method, fmt.Sprintf("/watchlist/%d", movieID), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WatchlistStatus calls GET /watchlist/status. An empty ID list returns an empty status without a request.
func (c *Client) WatchlistStatus(ctx context.Context, movieIDs []int) (models.WatchlistStatus, error) {
	if len(movieIDs) == 0 {
		return models.WatchlistStatus{}, nil
	}
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	ids := make([]string, len(movieIDs))
	for i, id := range movieIDs {
		ids[i] = strconv.Itoa(id)
	}

	var resp statusResponse
	query := url.Values{"movie_ids": {strings.Join(ids, ",")}}
	if err := c.do(ctx, http.MethodGet, "/watchlist/status", query, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Status == nil {
		resp.Status = models.WatchlistStatus{}
	}
	return resp.Status, nil
}
