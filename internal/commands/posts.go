package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/models/dto"
	"github.com/hongminglow/wayfarer/internal/view"
)

func postsCommand(app *App) *cli.Command {
	var category, area, filter string
	return &cli.Command{
		Name:    "posts",
		Summary: "Read and write community posts",
		Usage:   "wayfarer posts [--category NAME] [--area NAME] [--filter TEXT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("posts", pflag.ContinueOnError)
			flagSet.StringVar(&category, "category", "", "price_alert, traffic, food_tips or lost_found")
			flagSet.StringVar(&area, "area", "", "only posts about this area")
			flagSet.StringVar(&filter, "filter", "", "match title, description, author or area locally")
			return flagSet
		},
		Subcommands: []*cli.Command{
			showPostCommand(app),
			createPostCommand(app),
			reactCommand(app),
			commentCommand(app),
		},
		Run: func(args []string) error {
			query := api.PostQuery{Area: area}
			if category != "" {
				parsed, ok := models.ParsePostCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				query.Category = string(parsed)
			}
			community := view.NewCommunity(app.Ctx, app.Client, app.Sessions)
			defer community.Close()
			if err := community.SetQuery(app.Ctx, query); err != nil {
				return app.fail(err, "Could not load posts.")
			}
			community.SetFilter(filter)

			out := app.printer()
			snapshot := community.Snapshot()
			if len(snapshot.Visible) == 0 {
				out.Muted("No posts yet.")
				return nil
			}
			for _, post := range snapshot.Visible {
				printPostSummary(out, post)
			}
			return nil
		},
	}
}

func printPostSummary(out cli.Printer, post models.Post) {
	out.Line("%s %s %s", out.Styles.Muted.Render(fmt.Sprintf("#%d", post.ID)), out.Styles.Title.Render(post.Title),
		out.Styles.Accent.Render(categoryLabel(post.Category)))
	out.Muted("  by %s in %s  +%d -%d  %d comments", post.Author, post.Area, post.LikesCount, post.DislikesCount, post.CommentsCount)
}

func categoryLabel(category models.PostCategory) string {
	return strings.ToLower(strings.ReplaceAll(string(category), "_", " "))
}

func showPostCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Show a post with its comments",
		Usage:   "wayfarer posts show <post-id>",
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer posts show <post-id>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			community := view.NewCommunity(app.Ctx, app.Client, app.Sessions)
			defer community.Close()
			if err := community.Open(app.Ctx, id); err != nil {
				return app.fail(err, "Could not load this post.")
			}
			post := community.Snapshot().Detail.Data
			out := app.printer()
			printPostSummary(out, post)
			if post.Description != "" {
				out.Line("\n%s\n", post.Description)
			}
			for _, comment := range post.Comments {
				out.Line("  %s %s", out.Styles.Label.Render(comment.Author+":"), comment.Text)
			}
			return nil
		},
	}
}

func createPostCommand(app *App) *cli.Command {
	var category, area, description string
	return &cli.Command{
		Name:    "create",
		Summary: "Publish a post",
		Usage:   "wayfarer posts create <title> --category NAME --area NAME [--description TEXT]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&category, "category", "", "price_alert, traffic, food_tips or lost_found")
			flagSet.StringVar(&area, "area", "", "area the post is about")
			flagSet.StringVar(&description, "description", "", "post body")
			return flagSet
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "wayfarer posts create <title> --category NAME --area NAME"); err != nil {
				return err
			}
			parsed, ok := models.ParsePostCategory(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			community := view.NewCommunity(app.Ctx, app.Client, app.Sessions)
			defer community.Close()
			community.SetPostDraft(dto.CreatePostRequest{
				Title:       strings.Join(args, " "),
				Description: description,
				Category:    parsed,
				Area:        area,
			})
			post, err := community.SubmitPost(app.Ctx)
			if err != nil {
				return app.report(community.Snapshot().ActionError)
			}
			app.printer().Success("Published post #%d.", post.ID)
			return nil
		},
	}
}

func reactCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "react",
		Summary: "Like or dislike a post",
		Usage:   "wayfarer posts react <post-id> like|dislike",
		Run: func(args []string) error {
			if err := requireArgs(args, 2, "wayfarer posts react <post-id> like|dislike"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			reaction := models.Reaction(strings.ToUpper(args[1]))
			if !reaction.Valid() {
				return fmt.Errorf("reaction must be like or dislike, got %q", args[1])
			}
			community := view.NewCommunity(app.Ctx, app.Client, app.Sessions)
			defer community.Close()
			// Open first so the updated counts can be shown.
			if err := community.Open(app.Ctx, id); err != nil {
				app.Logger.Debug("post detail unavailable", "error", err)
			}
			if err := community.React(app.Ctx, id, reaction); err != nil {
				return app.report(community.Snapshot().ActionError)
			}
			post := community.Snapshot().Detail.Data
			app.printer().Success("Reaction recorded: +%d -%d", post.LikesCount, post.DislikesCount)
			return nil
		},
	}
}

func commentCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "comment",
		Summary: "Comment on a post",
		Usage:   "wayfarer posts comment <post-id> <text>",
		Run: func(args []string) error {
			if err := requireArgs(args, 2, "wayfarer posts comment <post-id> <text>"); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			community := view.NewCommunity(app.Ctx, app.Client, app.Sessions)
			defer community.Close()
			community.SetCommentDraft(id, strings.Join(args[1:], " "))
			if err := community.SubmitComment(app.Ctx, id); err != nil {
				return app.report(community.Snapshot().ActionError)
			}
			app.printer().Success("Comment added.")
			return nil
		},
	}
}
