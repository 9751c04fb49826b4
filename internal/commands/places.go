package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/view"
)

func placesCommand(app *App) *cli.Command {
	var area, category, filter string
	return &cli.Command{
		Name:    "places",
		Summary: "Explore places, optionally by area and category",
		Usage:   "wayfarer places [--area NAME] [--category NAME] [--filter TEXT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("places", pflag.ContinueOnError)
			flagSet.StringVar(&area, "area", "", "only places in this area")
			flagSet.StringVar(&category, "category", "", "only places in this category")
			flagSet.StringVar(&filter, "filter", "", "match name, area or category locally")
			return flagSet
		},
		Subcommands: []*cli.Command{
			savedPlacesCommand(app),
			savePlaceCommand(app),
			unsavePlaceCommand(app),
		},
		Run: func(args []string) error {
			explore := view.NewExplore(app.Ctx, app.Client, app.Sessions)
			defer explore.Close()

			if err := explore.SetQuery(app.Ctx, api.PlaceQuery{Area: area, Category: category}); err != nil {
				return app.fail(err, "Could not load places.")
			}
			if err := explore.ReloadSaved(app.Ctx); err != nil {
				app.Logger.Debug("saved places unavailable", "error", err)
			}
			explore.SetFilter(filter)

			snapshot := explore.Snapshot()
			out := app.printer()
			if len(snapshot.Visible) == 0 {
				out.Muted("No places found.")
				return nil
			}
			for _, item := range snapshot.Visible {
				printPlace(out, item.Place, item.Saved)
			}
			return nil
		},
	}
}

func printPlace(out cli.Printer, place models.Place, saved bool) {
	marker := ""
	if saved {
		marker = " " + out.Styles.Accent.Render("[saved]")
	}
	out.Line("%s %s%s", out.Styles.Muted.Render(fmt.Sprintf("#%d", place.ID)), out.Styles.Title.Render(place.Name), marker)
	out.Field("Area", place.AreaName)
	out.Field("Category", place.Category)
	out.Field("Address", place.Address)
	if place.ReviewCount > 0 {
		out.Field("Rating", fmt.Sprintf("%.1f (%d reviews)", place.AverageRating, place.ReviewCount))
	}
	if place.OpeningTime != "" || place.ClosingTime != "" {
		out.Field("Hours", strings.Trim(place.OpeningTime+" - "+place.ClosingTime, " -"))
	}
}

func savedPlacesCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "saved",
		Summary: "List your saved places",
		Run: func(args []string) error {
			if _, ok := app.Sessions.Current(); !ok {
				return app.fail(&view.DeniedError{Action: "save", Reason: "login required"}, "")
			}
			saved, err := app.Client.SavedPlaces(app.Ctx)
			if err != nil {
				return app.fail(err, "Could not load saved places.")
			}
			out := app.printer()
			if len(saved) == 0 {
				out.Muted("No saved places yet.")
				return nil
			}
			for _, item := range saved {
				printPlace(out, item.Place, true)
			}
			return nil
		},
	}
}

func savePlaceCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "save",
		Summary: "Bookmark a place",
		Usage:   "wayfarer places save <place-id>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer places save <place-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			explore := view.NewExplore(app.Ctx, app.Client, app.Sessions)
			defer explore.Close()
			if err := explore.Save(app.Ctx, id); err != nil {
				return app.report(explore.Snapshot().ActionError)
			}
			app.printer().Success("Saved place %d.", id)
			return nil
		},
	}
}

func unsavePlaceCommand(app *App) *cli.Command {
	var yes bool
	return &cli.Command{
		Name:    "unsave",
		Summary: "Remove a bookmark",
		Usage:   "wayfarer places unsave <place-id> [--yes]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("unsave", pflag.ContinueOnError)
			flagSet.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer places unsave <place-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, ok := app.Sessions.Current(); !ok {
				return app.fail(&view.DeniedError{Action: "save", Reason: "login required"}, "")
			}
			explore := view.NewExplore(app.Ctx, app.Client, app.Sessions)
			defer explore.Close()
			// Load places so the confirmation can name the place.
			if err := explore.Mount(app.Ctx); err != nil {
				app.Logger.Debug("explore mount failed", "error", err)
			}
			if err := explore.Unsave(app.Ctx, id, app.confirm(yes)); err != nil {
				return app.fail(err, "Could not remove this place.")
			}
			app.printer().Success("Removed place %d from saved places.", id)
			return nil
		},
	}
}
