package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/formatter"
	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

func parseID(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: movie ID is required", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a movie ID", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// filtersFrom builds filters from --preset, then --query, then the individual filter flags; later sources win.
func (r *Runner) filtersFrom(cmd *cli.Command) (models.FilterState, error) {
	f := models.DefaultFilterState()

	if name := cmd.String("preset"); name != "" {
		if err := r.storage(); err != nil {
			return f, err
		}
		p, err := r.presets.GetByName(name)
		if err != nil {
			return f, fmt.Errorf("preset %q: %w", name, err)
		}
		f = p.Filters()
	}

	if q := cmd.String("query"); q != "" {
		parsed, err := url.ParseQuery(strings.TrimPrefix(q, "?"))
		if err != nil {
			return f, fmt.Errorf("%w: --query: %v", shared.ErrInvalidFlag, err)
		}
		values := f.Values()
		for k, v := range parsed {
			values[k] = v
		}
		if f, err = models.FilterStateFromValues(values); err != nil {
			return f, fmt.Errorf("%w: --query: %v", shared.ErrInvalidFlag, err)
		}
	}

	if cmd.IsSet("search") {
		f.Search = cmd.String("search")
	}
	if cmd.IsSet("genre") {
		f.Genre = cmd.String("genre")
	}
	if cmd.IsSet("year") {
		f.Year = int(cmd.Int("year"))
	}
	if cmd.IsSet("min-rating") {
		f.MinRating = cmd.Float("min-rating")
	}
	if cmd.IsSet("max-rating") {
		f.MaxRating = cmd.Float("max-rating")
	}
	if cmd.IsSet("sort") {
		f.Sort = models.SortKey(cmd.String("sort"))
	}

	f = f.Normalized()
	if !f.Sort.Known() {
		r.logger.Warn("unknown sort key, the API falls back to rating_desc", "sort", f.Sort)
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return f, nil
}

// MoviesList fetches GET /movies with the requested filters and renders the result.
//
// With a stored session, watchlisted movies are marked.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	filters, err := r.filtersFrom(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	r.tryAuthorize()
	r.logger.Debug("listing movies", "filters", filters.Summary(), "format", format)

	list, err := r.api().ListMovies(ctx, filters, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	var status models.WatchlistStatus
	if r.api().Authenticated() && len(list.Movies) > 0 {
		if s, err := r.api().WatchlistStatus(ctx, models.MovieIDs(list.Movies)); err != nil {
			r.logger.Warn("watchlist status unavailable", "error", err)
		} else {
			status = s
		}
	}

	data, err := formatter.Movies(format, filters, list.Movies, list.TotalCount, status)
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// MoviesShow prints one movie's details.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	movie, err := r.api().GetMovie(ctx, id)
	if err != nil {
		return err
	}

	if format == formatter.FormatJSON {
		data, err := formatter.ToJSON(movie)
		if err != nil {
			return err
		}
		return r.emit(cmd, data)
	}

	r.writePlain("%s", formatter.MovieToText(*movie))
	if r.tryAuthorize() == nil {
		return nil
	}

	status, err := r.api().WatchlistStatus(ctx, []int{id})
	if err != nil {
		r.logger.Warn("watchlist status unavailable", "error", err)
		return nil
	}
	if status[id] {
		return r.writePlain("\n✓ In your watchlist\n")
	}
	return r.writePlain("\nNot in your watchlist\n")
}

// MoviesFilters lists the filter values the API offers.
func (r *Runner) MoviesFilters(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	options, err := r.api().FilterOptions(ctx)
	if err != nil {
		return err
	}
	o := options.WithDefaults(r.now())

	if format == formatter.FormatJSON {
		return r.writeJSON(o, true)
	}
	return r.writePlain("%s", formatter.FilterOptionsToText(o))
}

// MoviesPoster opens the poster in the browser, or downloads it with --save.
func (r *Runner) MoviesPoster(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	movie, err := r.api().GetMovie(ctx, id)
	if err != nil {
		return err
	}

	poster := movie.PosterImage()
	if poster == "" {
		return fmt.Errorf("%w: %s has no poster", shared.ErrInvalidArgument, movie.Title)
	}

	if path := cmd.String("save"); path != "" {
		data, err := formatter.DownloadImage(ctx, r.httpClient, poster)
		if err != nil {
			return err
		}
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		return r.writePlain("✓ Saved poster for %s to %s\n", movie.Title, path)
	}

	r.logger.Info("opening poster", "movie", movie.Title, "url", poster)
	if err := shared.OpenBrowser(poster); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("Opening %s\n", poster)
}
