package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/pable/faceitwatch/internal/monitor"
	"github.com/pable/faceitwatch/internal/statuspage"
)

var indicatorIcons = map[string]string{
	"none":     "🟢",
	"minor":    "🟡",
	"major":    "🟠",
	"critical": "🔴",
}

// RenderStatusPage formats the FACEIT status page summary for the chat.
func RenderStatusPage(s *statuspage.Summary) string {
	var b strings.Builder

	icon, ok := indicatorIcons[s.Status.Indicator]
	if !ok {
		icon = "⚪"
	}
	fmt.Fprintf(&b, "<b>FACEIT Status:</b> %s %s\n", icon, html.EscapeString(s.Status.Description))

	var degraded []statuspage.Component
	for _, c := range s.Components {
		if !c.Group && !c.Operational() {
			degraded = append(degraded, c)
		}
	}
	if len(degraded) > 0 {
		b.WriteString("\n<b>Affected components:</b>\n")
		for _, c := range degraded {
			fmt.Fprintf(&b, "• %s: %s\n", html.EscapeString(c.Name), html.EscapeString(humanize(c.Status)))
		}
	}

	if len(s.Incidents) > 0 {
		b.WriteString("\n<b>Incidents:</b>\n")
		for _, inc := range s.Incidents {
			name := html.EscapeString(inc.Name)
			if inc.Shortlink != "" {
				name = fmt.Sprintf("<a href='%s'>%s</a>", html.EscapeString(inc.Shortlink), name)
			}
			fmt.Fprintf(&b, "• %s (%s)\n", name, html.EscapeString(humanize(inc.Status)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// RenderMonitorStatus formats the poll loop status for the chat.
func RenderMonitorStatus(st monitor.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Monitoring:</b> %s\n", st.State)
	if st.State == monitor.StateIdle {
		return strings.TrimRight(b.String(), "\n")
	}
	fmt.Fprintf(&b, "<b>Tracked players:</b> %d\n", st.Players)
	fmt.Fprintf(&b, "<b>Matches announced:</b> %d\n", st.Notified)
	fmt.Fprintf(&b, "<b>Poll cycles:</b> %d", st.Iterations)
	if !st.LastPoll.IsZero() {
		fmt.Fprintf(&b, "\n<b>Last poll:</b> %s", st.LastPoll.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}
