package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/barriersim/pkg/simulation"
)

// maxListedVictims bounds the frequency table; larger placements only show
// the busiest victim.
const maxListedVictims = 100

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func renderReport(r *simulation.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("barriersim run %s", r.RunID)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("seed %d, %d reps, %s placement, %s",
		r.Seed, r.Reps, r.Strategy, r.Elapsed.Round(time.Millisecond))))
	b.WriteString("\n\n")

	if r.Single != nil {
		b.WriteString(renderDetail(r.Single))
		return b.String()
	}
	b.WriteString(renderSummaries(r.Summaries))
	return b.String()
}

func renderDetail(d *simulation.Detail) string {
	var b strings.Builder
	counts := fmt.Sprintf("Vertices: %d\nEdges: %d\nLeaves: %d\nHeight: %d\nvictims: %d",
		d.Network.Vertices, d.Network.Edges, d.Network.Leaves, d.Network.Height, d.Placed)
	b.WriteString(statsBoxStyle.Render(counts))
	b.WriteString("\n")

	rows := d.Frequencies
	if len(rows) > maxListedVictims {
		rows = rows[:1]
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%8s %10s %10s %10s", "victim", "attackers", "relcatch", "misdist")))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%8d %10d %10.4f %10.4f\n", row.Victim, row.Attackers, row.RelCatch, row.Misdistribution)
	}
	if len(rows) < len(d.Frequencies) {
		b.WriteString(helpStyle.Render(fmt.Sprintf("(%d more victims)", len(d.Frequencies)-len(rows))))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSummaries(summaries []simulation.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("relcatches"))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(statsLine(s.Victims, "relcatch", s.RelCatch))
	}
	b.WriteString(headerStyle.Render("misdisfacts"))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString(statsLine(s.Victims, "misdistr", s.Misdistribution))
	}
	return b.String()
}

func statsLine(victims int, name string, s simulation.Stats) string {
	return fmt.Sprintf("%3d %11s: mean: %f, max: %f, 90p: %f, 75p: %f, 50p: %f, stddev: %f, iqd: %f\n",
		victims, name, s.Mean, s.Max, s.P90, s.P75, s.P50, s.StdDev, s.IQD)
}
