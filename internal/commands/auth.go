package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/session"
)

func loginCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "login",
		Summary: "Sign in with a username or email",
		Usage:   "wayfarer login [username-or-email]",
		Run: func(args []string) error {
			identifier := ""
			if len(args) > 0 {
				identifier = args[0]
			} else {
				line, err := app.Prompter.Line("Username or email: ")
				if err != nil {
					return err
				}
				identifier = line
			}
			identifier = strings.TrimSpace(identifier)
			if identifier == "" {
				return errors.New("username or email is required")
			}
			password, err := app.Prompter.Password("Password: ")
			if err != nil {
				return err
			}

			response, err := app.Client.Login(app.Ctx, identifier, password)
			if err != nil {
				return app.fail(err, "Login failed.")
			}
			identity := models.Identity{
				Username: response.User.Username,
				Email:    response.User.Email,
				Role:     response.User.Role,
				Token:    response.Token,
			}
			if err := app.Sessions.Login(identity); err != nil {
				return app.fail(err, "Could not save the session.")
			}
			app.printer().Success("Logged in as %s (%s).", identity.Username, strings.ToLower(string(identity.Role)))
			return nil
		},
	}
}

func logoutCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "Sign out and forget the stored session",
		Run: func(args []string) error {
			if _, ok := app.Sessions.Current(); !ok {
				app.printer().Muted("Not logged in.")
				return nil
			}
			// The local session is cleared even when the server call fails.
			if err := app.Client.Logout(app.Ctx); err != nil {
				app.Logger.Debug("server logout failed", "error", err)
			}
			if err := app.Sessions.Logout(); err != nil {
				return app.fail(err, "Could not clear the session.")
			}
			app.printer().Success("Logged out.")
			return nil
		},
	}
}

func signupCommand(app *App) *cli.Command {
	var (
		email string
		role  string
	)
	return &cli.Command{
		Name:    "signup",
		Summary: "Create an account",
		Usage:   "wayfarer signup <username> --email <email> [--role traveler|merchant]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("signup", pflag.ContinueOnError)
			flagSet.StringVar(&email, "email", "", "email address")
			flagSet.StringVar(&role, "role", "traveler", "account role: traveler or merchant")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer signup <username> --email <email>"); err != nil {
				return err
			}
			parsed, ok := models.ParseRole(role)
			if !ok || parsed == models.Admin {
				return fmt.Errorf("role must be traveler or merchant, got %q", role)
			}
			password, err := app.Prompter.Password("Password: ")
			if err != nil {
				return err
			}
			repeat, err := app.Prompter.Password("Repeat password: ")
			if err != nil {
				return err
			}
			if password != repeat {
				return errors.New("passwords do not match")
			}

			profile, err := app.Client.Signup(app.Ctx, dto.SignupRequest{
				Username: args[0],
				Email:    email,
				Password: password,
				Role:     parsed,
			})
			if err != nil {
				return app.fail(err, "Sign up failed.")
			}
			app.printer().Success("Account %s created. Run 'wayfarer login %s' to sign in.", profile.Username, profile.Username)
			return nil
		},
	}
}

func whoamiCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the current identity",
		Run: func(args []string) error {
			identity, ok := app.Sessions.Current()
			out := app.printer()
			if !ok {
				out.Muted("Not logged in.")
				return &cli.ExitError{Code: 1}
			}
			out.Title(identity.Username)
			out.Field("Email", identity.Email)
			out.Field("Role", strings.ToLower(string(identity.Role)))
			out.Field("Mode", strings.ToLower(string(identity.EffectiveMode())))
			if expires, ok := tokenExpiry(identity.Token); ok {
				out.Field("Token expires", expires.Local().Format(time.RFC1123))
			}
			out.Field("Server", app.Client.BaseURL())
			return nil
		},
	}
}

// tokenExpiry reads the exp claim when the token is a JWT. The signature
// is not checked; the server does that.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expires, err := claims.GetExpirationTime()
	if err != nil || expires == nil {
		return time.Time{}, false
	}
	return expires.Time, true
}

func modeCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "mode",
		Summary: "Show or switch the acting mode (merchants only)",
		Usage:   "wayfarer mode [traveler|merchant]",
		Run: func(args []string) error {
			identity, ok := app.Sessions.Current()
			if !ok {
				return app.fail(session.ErrNotLoggedIn, "Log in first.")
			}
			out := app.printer()
			if len(args) == 0 {
				out.Line("%s", strings.ToLower(string(identity.EffectiveMode())))
				return nil
			}
			mode, ok := models.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown mode %q", args[0])
			}
			if err := app.switchMode(app.Ctx, mode); err != nil {
				if errors.Is(err, session.ErrModeNotAllowed) {
					return app.fail(err, "Only merchants can switch to traveler mode.")
				}
				return app.fail(err, "Could not switch mode.")
			}
			out.Success("Now acting as %s.", strings.ToLower(string(mode)))
			return nil
		},
	}
}

// switchMode asks the backend for a token bound to mode, then stores both.
func (a *App) switchMode(ctx context.Context, mode models.Role) error {
	identity, ok := a.Sessions.Current()
	if !ok {
		return session.ErrNotLoggedIn
	}
	if !guard.ModeAllowed(identity.Role, mode) {
		return session.ErrModeNotAllowed
	}
	response, err := a.Client.SwitchMode(ctx, mode)
	if err != nil {
		return err
	}
	return a.Sessions.SwitchMode(mode, response.Token)
}
