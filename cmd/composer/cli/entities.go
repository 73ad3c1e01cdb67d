package cli

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/composer"
	"github.com/deepnoodle-ai/composer/entity"
	"github.com/deepnoodle-ai/composer/settings"
	wontoncli "github.com/deepnoodle-ai/wonton/cli"
)

func registerEntitiesCommand(application *wontoncli.App, a *app) {
	application.Command("entities").
		Description("Print the merged agents, commands, hooks, and settings").
		Flags(
			wontoncli.Strings("exclude", "").Help("Skip entity files matching this glob. Can be specified multiple times"),
		).
		Run(func(ctx *wontoncli.Context) error {
			a.parseGlobalFlags(ctx)
			dirs, err := bundleDirs(ctx)
			if err != nil {
				return err
			}
			out, err := a.load(dirs, ctx.Strings("exclude"))
			if err != nil {
				return err
			}
			return printEntities(a.stdout, out)
		})
}

func printEntities(w io.Writer, out *composer.Output) error {
	for _, a := range out.Agents {
		text, err := entity.RenderAgent(a)
		if err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}
		printHeader(w, "agents/"+a.Name+".md")
		fmt.Fprintln(w, text)
	}
	for _, c := range out.Commands {
		text, err := entity.RenderCommand(c)
		if err != nil {
			return fmt.Errorf("command %s: %w", c.Name, err)
		}
		printHeader(w, "commands/"+c.Name+".md")
		fmt.Fprintln(w, text)
	}
	for _, h := range out.Hooks {
		printHeader(w, fmt.Sprintf("hooks/%s (%s from %s)", h.Name, h.Type, h.Source))
		fmt.Fprintln(w, h.Content)
		fmt.Fprintln(w)
	}
	data, err := settings.Encode(out.Settings)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	printHeader(w, "settings.json")
	_, err = w.Write(data)
	return err
}
