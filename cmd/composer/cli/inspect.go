package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/composer/internal/tablewriter"
	wontoncli "github.com/deepnoodle-ai/wonton/cli"
)

func registerInspectCommand(application *wontoncli.App, a *app) {
	application.Command("inspect").
		Description("Show how bundle sections would be merged").
		Flags(
			wontoncli.Strings("exclude", "").Help("Skip entity files matching this glob. Can be specified multiple times"),
		).
		Run(func(ctx *wontoncli.Context) error {
			a.parseGlobalFlags(ctx)
			dirs, err := bundleDirs(ctx)
			if err != nil {
				return err
			}
			return a.inspect(dirs, ctx.Strings("exclude"))
		})
}

func (a *app) inspect(dirs, exclude []string) error {
	out, err := a.load(dirs, exclude)
	if err != nil {
		return err
	}
	w := a.stdout

	printHeader(w, "Sections")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Section", "Strategy", "Priority", "Sources"})
	table.SetAlignment(tablewriter.AlignRight, tablewriter.AlignLeft, tablewriter.AlignLeft, tablewriter.AlignRight)
	table.SetMaxWidth(48)
	for i, b := range out.Buckets {
		table.Append(
			strconv.Itoa(i+1),
			b.Title,
			string(b.Strategy),
			strconv.Itoa(b.Priority),
			strings.Join(b.Sources, ", "),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	printHeader(w, "Entities")
	fmt.Fprintf(w, "%s %d agents, %d commands, %d hooks\n",
		bullet, len(out.Agents), len(out.Commands), len(out.Hooks))

	if len(out.Diagnostics) > 0 {
		fmt.Fprintln(w)
		printHeader(w, "Warnings")
		printDiagnostics(w, out.Diagnostics)
	}
	return nil
}
