package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitly/internal/cli"
	"github.com/julianstephens/habitly/internal/stats"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Engine()
	if err != nil {
		return err
	}

	habits := eng.SelectAll()
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	summary := stats.Compute(habits, eng.Today())

	ctx.Println(cli.TitleStyle.Render("Today"))
	ctx.Printf("  %d%% complete (%d of %d due)\n\n", summary.TodayPercent, summary.TodayDone, summary.TodayDue)

	ctx.Println(cli.TitleStyle.Render("Last 7 days"))
	for _, d := range summary.Last7 {
		bar := strings.Repeat("█", d.Percent/10) + strings.Repeat("░", 10-d.Percent/10)
		ctx.Printf("  %s %s %s %3d%%\n", d.Weekday.String()[:3], d.Date, bar, d.Percent)
	}
	ctx.Println()

	ctx.Println(cli.TitleStyle.Render("Streaks"))
	ctx.Printf("  Current best: %d\n", summary.MaxCurrent)
	ctx.Printf("  Longest ever: %d\n", summary.MaxLongest)
	if summary.Best != nil {
		ctx.Printf("  Strongest:    %s\n", describe(summary.Best.Emoji, summary.Best.Name, summary.Best.Streak.Longest))
	}
	if summary.Worst != nil {
		ctx.Printf("  Needs work:   %s\n", describe(summary.Worst.Emoji, summary.Worst.Name, summary.Worst.Streak.Longest))
	}
	return nil
}

func describe(emoji, name string, longest int) string {
	return fmt.Sprintf("%s %s (longest %d)", emoji, name, longest)
}
