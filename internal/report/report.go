// Package report renders match results: the HTML notification sent to the
// chat, and plain tables for the command line.
package report

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/faceitwatch/internal/faceit"
	"github.com/pable/faceitwatch/internal/model"
)

// RoomURL is the FACEIT match room link prefix.
const RoomURL = "https://www.faceit.com/en/cs2/room/"

// Stat table column widths. Nicknames longer than nameWidth push the row
// out of alignment.
const (
	nameWidth   = 15
	killsWidth  = 2
	deathsWidth = 2
	kdWidth     = 5
	krWidth     = 5
)

// RenderMatch builds the notification message for r using Telegram HTML.
func RenderMatch(r model.MatchResult) string {
	var b strings.Builder

	outcome := "🟥 Lost"
	if r.Won() {
		outcome = "🟩 Won"
	}
	id := html.EscapeString(r.MatchID)

	b.WriteString("<b>New Match Played!</b>\n")
	fmt.Fprintf(&b, "<b>Match ID:</b> <a href='%s%s'>%s</a>\n", RoomURL, id, id)
	fmt.Fprintf(&b, "<b>Result:</b> <b>%s</b>\n", outcome)
	fmt.Fprintf(&b, "<b>Rounds:</b> %s\n", html.EscapeString(r.Rounds))
	fmt.Fprintf(&b, "<b>Map:</b> %s\n", html.EscapeString(r.Map))
	fmt.Fprintf(&b, "<b>Time:</b> %s\n", html.EscapeString(r.StartTime))
	fmt.Fprintf(&b, "<b>Duration:</b> %d minutes\n", r.DurationMinutes)
	if r.DemoURL == "" || r.DemoURL == faceit.NotAvailable {
		fmt.Fprintf(&b, "<b>Demo:</b> %s\n\n", faceit.NotAvailable)
	} else {
		fmt.Fprintf(&b, "<b>Demo:</b> <a href='%s'>Watch Here</a>\n\n", html.EscapeString(r.DemoURL))
	}
	b.WriteString(StatTable(r.Players))

	return b.String()
}

// StatTable renders player rows as a preformatted fixed-width block.
func StatTable(rows []model.PlayerStatRow) string {
	var b strings.Builder
	b.WriteString("<pre><b>")
	b.WriteString(html.EscapeString(statLine("Player", "K", "D", "K/DR", "KR")))
	b.WriteString("</b>\n")
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(html.EscapeString(statLine(r.Nickname, orNA(r.Kills), orNA(r.Deaths), orNA(r.KDRatio), orNA(r.KRRatio))))
	}
	b.WriteString("</pre>")
	return b.String()
}

func statLine(name, kills, deaths, kd, kr string) string {
	return fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		nameWidth, name, killsWidth, kills, deathsWidth, deaths, kdWidth, kd, krWidth, kr)
}

func orNA(s string) string {
	if s == "" {
		return faceit.NotAvailable
	}
	return s
}

// PrintResult writes a match result as a one-line summary and a player table.
func PrintResult(w io.Writer, r model.MatchResult) {
	outcome := "LOST"
	if r.Won() {
		outcome = "WON"
	}
	fmt.Fprintf(w, "\nMatch: %s  |  %s  |  Map: %s  |  Rounds: %s  |  %s  |  %d min  |  Demo: %s\n\n",
		r.MatchID, outcome, r.Map, r.Rounds, r.StartTime, r.DurationMinutes, r.DemoURL)

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("PLAYER", "K", "D", "K/D", "K/R")
	for _, p := range r.Players {
		table.Append(p.Nickname, p.Kills, p.Deaths, p.KDRatio, p.KRRatio)
	}
	table.Render()
}

// RosterEntry is one row of the roster listing.
type RosterEntry struct {
	Position int
	Nickname string
	PlayerID string
	ELO      int
	Level    int
}

// PrintRoster writes the tracked players as a table.
func PrintRoster(w io.Writer, entries []RosterEntry) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("#", "NICKNAME", "PLAYER_ID", "LEVEL", "ELO")
	for _, e := range entries {
		level, elo := "—", "—"
		if e.Level > 0 {
			level = strconv.Itoa(e.Level)
		}
		if e.ELO > 0 {
			elo = strconv.Itoa(e.ELO)
		}
		id := e.PlayerID
		if id == "" {
			id = "—"
		}
		table.Append(strconv.Itoa(e.Position), e.Nickname, id, level, elo)
	}
	table.Render()
}
