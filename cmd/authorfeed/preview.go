package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/smach/authorfeed"
)

// Run executes the preview command.
func (c *PreviewCmd) Run(deps *Dependencies) error {
	for i, fc := range deps.Config.Feeds {
		articles, err := deps.Generator.Preview(deps.Ctx, fc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", fc.ProfileURL, authorfeed.ErrorMessageOrText(err))
			return err
		}

		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "%s <%s>\n\n", fc.Author, fc.ProfileURL)
		writeTable(deps.Stdout, articles, c.Width)
		fmt.Fprintf(deps.Stdout, "\n%d articles\n", len(articles))
	}
	return nil
}

// writeTable prints one row per article with columns padded by display
// width, so wide characters in titles keep the columns aligned.
func writeTable(w io.Writer, articles []*authorfeed.Article, titleWidth int) {
	if titleWidth < 10 {
		titleWidth = 10
	}

	rows := [][]string{{"#", "DATE", "TITLE", "URL"}}
	for i, a := range articles {
		date := "-"
		if a.HasDate() {
			date = a.PublishedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			date,
			runewidth.Truncate(a.Title, titleWidth, "…"),
			a.URL,
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for j, cell := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j == len(row)-1 {
				cells[j] = cell
				continue
			}
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}
