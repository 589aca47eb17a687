// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/tasks"
)

// filterFlags are shared by `movies list` and `presets save`.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"s"},
			Usage:   "Case-insensitive title search",
		},
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Genre to match",
		},
		&cli.IntFlag{
			Name:    "year",
			Aliases: []string{"y"},
			Usage:   "Release year",
		},
		&cli.FloatFlag{
			Name:  "min-rating",
			Usage: "Lowest IMDb rating (0-10)",
		},
		&cli.FloatFlag{
			Name:  "max-rating",
			Usage: "Highest IMDb rating (0-10)",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort order: rating_desc, rating_asc, year_desc, year_asc or title_asc",
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Raw filter query string, e.g. 'genre=Drama&min_rating=8'",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, csv, markdown or json",
		Value:   "text",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write output to this file instead of stdout",
	}
}

func idArg() cli.Argument {
	return &cli.StringArg{Name: "id", UsageText: "movie ID"}
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
			Sources:  cli.EnvVars("CINEX_EMAIL"),
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			Required: true,
			Sources:  cli.EnvVars("CINEX_PASSWORD"),
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path", Value: "config.toml"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and store the session locally",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and log in",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Display name",
						Required: true,
					},
				}, credentialFlags()...),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the logged in user",
				Action: r.AuthWhoami,
			},
			{
				Name:   "status",
				Usage:  "Check the stored session and whether the API is reachable",
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog operations
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List movies matching filters",
				Flags: append(filterFlags(),
					&cli.StringFlag{
						Name:  "preset",
						Usage: "Start from a saved filter preset",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of movies (0 uses the API default)",
					},
					formatFlag(),
					outputFlag(),
				),
				Action: r.MoviesList,
			},
			{
				Name:      "show",
				Usage:     "Show one movie",
				Arguments: []cli.Argument{idArg()},
				Flags:     []cli.Flag{formatFlag()},
				Action:    r.MoviesShow,
			},
			{
				Name:   "filters",
				Usage:  "List the genres, years, rating range and sort orders the API offers",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.MoviesFilters,
			},
			{
				Name:      "poster",
				Usage:     "Open a movie poster in the browser",
				Arguments: []cli.Argument{idArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "save",
						Usage: "Download the poster to this path instead",
					},
				},
				Action: r.MoviesPoster,
			},
		},
	}
}

// watchlistCommand handles watchlist operations
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your watchlist",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List movies in your watchlist",
				Flags:   []cli.Flag{formatFlag(), outputFlag()},
				Action:  r.WatchlistList,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to your watchlist",
				Arguments: []cli.Argument{idArg()},
				Action:    r.WatchlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from your watchlist",
				Arguments: []cli.Argument{idArg()},
				Action:    r.WatchlistRemove,
			},
			{
				Name:      "status",
				Usage:     "Report which of the given movie IDs are in your watchlist",
				ArgsUsage: "<id>...",
				Action:    r.WatchlistStatus,
			},
			{
				Name:  "clear",
				Usage: "Remove every movie from your watchlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm removing everything",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Concurrent delete requests",
						Value: tasks.DefaultClearConcurrency,
					},
				},
				Action: r.WatchlistClear,
			},
		},
	}
}

// likesCommand handles likes from the movie detail page
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "Like or unlike movies",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Like a movie",
				Arguments: []cli.Argument{idArg()},
				Action:    r.LikesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Unlike a movie",
				Arguments: []cli.Argument{idArg()},
				Action:    r.LikesRemove,
			},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "Show your watchlist and recommendations",
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Dashboard,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Save a movie to your dashboard watchlist",
				Arguments: []cli.Argument{idArg()},
				Action:    r.DashboardAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie from your dashboard watchlist",
				Arguments: []cli.Argument{idArg()},
				Action:    r.DashboardRemove,
			},
		},
	}
}

// presetsCommand manages locally saved filter presets
func presetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "Save and reuse filter combinations",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save filters under a name, replacing any preset with that name",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     filterFlags(),
				Action:    r.PresetsSave,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved presets",
				Action:  r.PresetsList,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a preset",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.PresetsDelete,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the movie API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
