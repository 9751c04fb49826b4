package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
	"github.com/hongminglow/wayfarer/internal/view"
)

func dashboardCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Summary: "Show the dashboard for your role",
		Run: func(args []string) error {
			dashboard := view.NewDashboard(app.Ctx, app.Client, app.Sessions)
			defer dashboard.Close()
			if err := dashboard.Mount(app.Ctx); err != nil {
				return app.fail(err, "Log in to see your dashboard.")
			}
			snapshot := dashboard.Snapshot()
			out := app.printer()
			out.Title(fmt.Sprintf("%s dashboard", strings.ToLower(string(snapshot.Role))))
			out.Muted("acting as %s", strings.ToLower(string(snapshot.Mode)))

			data := snapshot.Dashboard.Data
			keys := make([]string, 0, len(data.Stats))
			for key := range data.Stats {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				out.Field(strings.ReplaceAll(key, "_", " "), fmt.Sprint(data.Stats[key]))
			}
			if len(data.SavedPlaces) > 0 {
				out.Title("Saved places")
				for _, place := range data.SavedPlaces {
					printPlace(out, place, true)
				}
			}
			if len(data.RecentPosts) > 0 {
				out.Title("Recent posts")
				for _, post := range data.RecentPosts {
					printPostSummary(out, post)
				}
			}
			return nil
		},
	}
}

func navCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "nav",
		Summary: "Show what you can reach and do right now",
		Run: func(args []string) error {
			identity, loggedIn := app.Sessions.Current()
			out := app.printer()
			out.Title("Navigation")
			for _, link := range guard.NavLinks(identity, loggedIn) {
				out.Line("  %-10s %s", link.Label, out.Styles.Muted.Render(link.Route))
			}
			out.Title("Actions")
			decisions := guard.Actions(identity, loggedIn)
			actions := make([]string, 0, len(decisions))
			for action := range decisions {
				actions = append(actions, string(action))
			}
			sort.Strings(actions)
			for _, action := range actions {
				decision := decisions[guard.Action(action)]
				if decision.Allowed {
					out.Line("  %-16s %s", action, out.Styles.Success.Render("allowed"))
				} else {
					out.Line("  %-16s %s", action, out.Styles.Error.Render(decision.Reason))
				}
			}
			return nil
		},
	}
}

func settingsCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "settings",
		Summary: "Show and edit your profile",
		Subcommands: []*cli.Command{
			updateProfileCommand(app),
			avatarCommand(app),
			deleteAccountCommand(app),
		},
		Run: func(args []string) error {
			settings := view.NewSettings(app.Ctx, app.Client, app.Sessions, app.Local)
			defer settings.Close()
			if err := settings.Mount(app.Ctx); err != nil {
				return app.fail(err, "Log in to view settings.")
			}
			snapshot := settings.Snapshot()
			profile := snapshot.Profile.Data
			out := app.printer()
			out.Title(profile.Username)
			out.Field("Email", profile.Email)
			out.Field("Role", strings.ToLower(string(profile.Role)))
			out.Field("Name", profile.FullName)
			out.Field("Bio", profile.Bio)
			out.Field("Avatar", profile.AvatarURL)
			out.Field("Theme", string(snapshot.Theme))
			return nil
		},
	}
}

func updateProfileCommand(app *App) *cli.Command {
	var (
		flagSet  *pflag.FlagSet
		email    string
		fullName string
		bio      string
	)
	return &cli.Command{
		Name:    "update",
		Summary: "Change email, name or bio",
		Usage:   "wayfarer settings update [--email E] [--name N] [--bio B]",
		Flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("update", pflag.ContinueOnError)
			flagSet.StringVar(&email, "email", "", "new email address")
			flagSet.StringVar(&fullName, "name", "", "full name")
			flagSet.StringVar(&bio, "bio", "", "short bio")
			return flagSet
		},
		Run: func(args []string) error {
			if _, ok := app.Sessions.Current(); !ok {
				return app.fail(session.ErrNotLoggedIn, "Log in first.")
			}
			var update dto.ProfileUpdate
			if flagSet.Changed("email") {
				update.Email = &email
			}
			if flagSet.Changed("name") {
				update.FullName = &fullName
			}
			if flagSet.Changed("bio") {
				update.Bio = &bio
			}
			if update == (dto.ProfileUpdate{}) {
				return fmt.Errorf("nothing to update")
			}
			settings := view.NewSettings(app.Ctx, app.Client, app.Sessions, app.Local)
			defer settings.Close()
			if _, err := settings.Update(app.Ctx, update); err != nil {
				return app.report(settings.Snapshot().ActionError)
			}
			app.printer().Success("Profile saved.")
			return nil
		},
	}
}

func avatarCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "avatar",
		Summary: "Upload a profile picture",
		Usage:   "wayfarer settings avatar <image-file>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer settings avatar <image-file>"); err != nil {
				return err
			}
			if _, ok := app.Sessions.Current(); !ok {
				return app.fail(session.ErrNotLoggedIn, "Log in first.")
			}
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			settings := view.NewSettings(app.Ctx, app.Client, app.Sessions, app.Local)
			defer settings.Close()
			profile, err := settings.UploadAvatar(app.Ctx, filepath.Base(args[0]), file)
			if err != nil {
				return app.report(settings.Snapshot().ActionError)
			}
			app.printer().Success("Picture updated: %s", profile.AvatarURL)
			return nil
		},
	}
}

func deleteAccountCommand(app *App) *cli.Command {
	var yes bool
	return &cli.Command{
		Name:    "delete-account",
		Summary: "Delete your account permanently",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("delete-account", pflag.ContinueOnError)
			flagSet.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
			return flagSet
		},
		Run: func(args []string) error {
			if _, ok := app.Sessions.Current(); !ok {
				return app.fail(session.ErrNotLoggedIn, "Log in first.")
			}
			settings := view.NewSettings(app.Ctx, app.Client, app.Sessions, app.Local)
			defer settings.Close()
			if err := settings.DeleteAccount(app.Ctx, app.confirm(yes)); err != nil {
				return app.fail(err, settings.Snapshot().ActionError)
			}
			app.printer().Success("Account deleted.")
			return nil
		},
	}
}

func themeCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "theme",
		Summary: "Show or set the colour theme",
		Usage:   "wayfarer theme [light|dark]",
		Run: func(args []string) error {
			if len(args) == 0 {
				app.printer().Line("%s", session.LoadTheme(app.Local))
				return nil
			}
			theme, ok := session.ParseTheme(args[0])
			if !ok {
				return fmt.Errorf("theme must be light or dark, got %q", args[0])
			}
			settings := view.NewSettings(app.Ctx, app.Client, app.Sessions, app.Local)
			defer settings.Close()
			if err := settings.SetTheme(theme); err != nil {
				return app.report(settings.Snapshot().ActionError)
			}
			app.printer().Success("Theme set to %s.", theme)
			return nil
		},
	}
}
