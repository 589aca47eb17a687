package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/cinex/internal/models"
)

// ListMovies fetches GET /movies.
func (c *Client) ListMovies(ctx context.Context, filters models.FilterState, limit int) (*MovieList, error) {
	var list MovieList
	if err := c.do(ctx, http.MethodGet, "/movies", filters.Params(limit), nil, &list); err != nil {
		return nil, err
	}
	if list.Movies == nil {
		list.Movies = []models.Movie{}
	}
	return &list, nil
}

// FilterOptions fetches GET /movies/filters.
func (c *Client) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var opts models.FilterOptions
	if err := c.do(ctx, http.MethodGet, "/movies/filters", nil, nil, &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// GetMovie fetches GET /movies/:id, including the synopsis.
func (c *Client) GetMovie(ctx context.Context, movieID int) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/movies/%d", movieID), nil, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}
