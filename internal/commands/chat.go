package commands

import (
	"fmt"
	"strings"

	"github.com/hongminglow/wayfarer/internal/chat"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/cli/chatui"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/session"
)

func chatCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "chat",
		Summary: "Direct messages with other users",
		Usage:   "wayfarer chat [list|open|send|start|search] ...",
		Subcommands: []*cli.Command{
			listThreadsCommand(app),
			openThreadCommand(app),
			sendMessageCommand(app),
			startThreadCommand(app),
			searchUsersCommand(app),
		},
		Run: func(args []string) error {
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			styles := cli.NewStyles(session.LoadTheme(app.Local))
			return chatui.RunThreads(app.Ctx, threads, app.switchMode, styles, app.In, app.Out)
		},
	}
}

func listThreadsCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Summary: "List your conversations",
		Usage:   "wayfarer chat list",
		Run: func(args []string) error {
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			if err := threads.Mount(app.Ctx); err != nil {
				return app.fail(err, "Could not load your chats.")
			}
			out := app.printer()
			list := threads.Snapshot().Threads.Data
			if len(list) == 0 {
				out.Muted("No conversations yet. Start one with 'wayfarer chat start <username>'.")
				return nil
			}
			for _, thread := range list {
				out.Line("%s %s", out.Styles.Muted.Render(fmt.Sprintf("#%d", thread.ID)),
					out.Styles.Title.Render(strings.Join(thread.Participants, ", ")))
				if thread.LastMessage != "" {
					out.Muted("  %s", thread.LastMessage)
				}
			}
			return nil
		},
	}
}

func printMessages(app *App, messages []models.Message) {
	out := app.printer()
	if len(messages) == 0 {
		out.Muted("No messages yet.")
		return
	}
	self, _ := app.Sessions.Current()
	for _, message := range messages {
		style := out.Styles.Label
		if message.Sender == self.Username {
			style = out.Styles.Accent
		}
		out.Line("%s %s", style.Render(message.Sender+":"), message.Text)
	}
}

func openThreadCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "open",
		Summary: "Show a conversation",
		Usage:   "wayfarer chat open <thread-id>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer chat open <thread-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			if err := threads.Mount(app.Ctx); err != nil {
				return app.fail(err, "Could not load your chats.")
			}
			if err := threads.Select(app.Ctx, id); err != nil {
				return app.report(threads.Snapshot().ActionError)
			}
			printMessages(app, threads.Snapshot().Messages)
			return nil
		},
	}
}

func sendMessageCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "send",
		Summary: "Send a message",
		Usage:   "wayfarer chat send <thread-id> <text>",
		Run: func(args []string) error {
			if err := requireArgs(args, 2, "wayfarer chat send <thread-id> <text>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			if err := threads.Mount(app.Ctx); err != nil {
				return app.fail(err, "Could not load your chats.")
			}
			if err := threads.Select(app.Ctx, id); err != nil {
				return app.report(threads.Snapshot().ActionError)
			}
			threads.SetDraft(strings.Join(args[1:], " "))
			if _, err := threads.Send(app.Ctx); err != nil {
				return app.report(threads.Snapshot().ActionError)
			}
			printMessages(app, threads.Snapshot().Messages)
			return nil
		},
	}
}

func startThreadCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "start",
		Summary: "Open a conversation with a user",
		Usage:   "wayfarer chat start <username>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer chat start <username>"); err != nil {
				return err
			}
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			if err := threads.Mount(app.Ctx); err != nil {
				return app.fail(err, "Could not load your chats.")
			}
			thread, err := threads.StartWith(app.Ctx, args[0])
			if err != nil {
				return app.report(threads.Snapshot().ActionError)
			}
			app.printer().Success("Conversation #%d with %s.", thread.ID, args[0])
			printMessages(app, threads.Snapshot().Messages)
			return nil
		},
	}
}

func searchUsersCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Summary: "Find users to chat with",
		Usage:   "wayfarer chat search <query>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer chat search <query>"); err != nil {
				return err
			}
			threads := chat.NewThreads(app.Ctx, app.Client, app.Sessions)
			defer threads.Close()
			users, err := threads.Search(app.Ctx, strings.Join(args, " "))
			if err != nil {
				return app.report(threads.Snapshot().ActionError)
			}
			out := app.printer()
			if len(users) == 0 {
				out.Muted("No users found.")
				return nil
			}
			for _, user := range users {
				out.Line("%s %s", user.Username, out.Styles.Muted.Render(strings.ToLower(string(user.Role))))
			}
			return nil
		},
	}
}

func askCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "ask",
		Summary: "Ask the travel assistant (interactive without a question)",
		Usage:   "wayfarer ask [question]",
		Run: func(args []string) error {
			bot := chat.NewBot(app.Client, app.Logger)
			if len(args) == 0 {
				styles := cli.NewStyles(session.LoadTheme(app.Local))
				return chatui.Run(app.Ctx, bot, styles, app.In, app.Out)
			}
			exchange, ok := bot.Ask(app.Ctx, strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("question is empty")
			}
			out := app.printer()
			if exchange.Fallback {
				out.Error(exchange.Bot)
				return nil
			}
			out.Line("%s", exchange.Bot)
			return nil
		},
	}
}
