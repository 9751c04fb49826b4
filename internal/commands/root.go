package commands

import "github.com/hongminglow/wayfarer/internal/cli"

// Root returns the top-level command.
func Root(app *App) *cli.Command {
	return &cli.Command{
		Name:        "wayfarer",
		Description: "Wayfarer: places, community tips, public services and chat for travelers.",
		Subcommands: []*cli.Command{
			loginCommand(app),
			logoutCommand(app),
			signupCommand(app),
			whoamiCommand(app),
			modeCommand(app),
			navCommand(app),
			dashboardCommand(app),
			placesCommand(app),
			postsCommand(app),
			servicesCommand(app),
			chatCommand(app),
			askCommand(app),
			settingsCommand(app),
			themeCommand(app),
		},
		Examples: []cli.Example{
			{Description: "Sign in", Command: "wayfarer login alice"},
			{Description: "Cafes in the old town", Command: "wayfarer places --area 'Old Town' --category cafe"},
			{Description: "Ask the assistant interactively", Command: "wayfarer ask"},
		},
	}
}
