package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/cinex/internal/models"
)

// Like calls POST /user/likes.
func (c *Client) Like(ctx context.Context, movieID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/user/likes", nil, movieIDRequest{MovieID: movieID}, nil)
}

// Unlike calls DELETE /user/likes/:id.
func (c *Client) Unlike(ctx context.Context, movieID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/likes/%d", movieID), nil, nil, nil)
}

// UserWatchlist calls GET /user/watchlist, the dashboard's view of the watchlist.
func (c *Client) UserWatchlist(ctx context.Context) ([]models.Movie, error) {
	return c.userMovies(ctx, "/user/watchlist")
}

// AddUserWatchlist calls POST /user/watchlist.
func (c *Client) AddUserWatchlist(ctx context.Context, movieID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/user/watchlist", nil, movieIDRequest{MovieID: movieID}, nil)
}

// RemoveUserWatchlist calls DELETE /user/watchlist/:id.
func (c *Client) RemoveUserWatchlist(ctx context.Context, movieID int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/watchlist/%d", movieID), nil, nil, nil)
}

// Recommendations calls GET /user/recommendations.
func (c *Client) Recommendations(ctx context.Context) ([]models.Movie, error) {
	return c.userMovies(ctx, "/user/recommendations")
}

func (c *Client) userMovies(ctx context.Context, path string) ([]models.Movie, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var resp moviesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Movies == nil {
		resp.Movies = []models.Movie{}
	}
	return resp.Movies, nil
}
