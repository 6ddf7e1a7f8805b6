package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hamed0406/uptimeboard/internal/dashboard"
	"github.com/hamed0406/uptimeboard/internal/present"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiGrey   = "\x1b[90m"
)

var stateColor = map[present.State]string{
	present.Healthy:       ansiGreen,
	present.Critical:      ansiRed,
	present.Indeterminate: ansiGrey,
}

var severityColor = map[present.Severity]string{
	present.SeverityOK:       ansiGreen,
	present.SeverityWarn:     ansiYellow,
	present.SeverityCritical: ansiRed,
}

func paint(s, color string, on bool) string {
	if !on || color == "" {
		return s
	}
	return color + s + ansiReset
}

func renderHeader(w io.Writer, st dashboard.Stats) {
	fmt.Fprintf(w, "%d websites: %d healthy, %d critical, %d unknown\n",
		st.Total, st.Healthy, st.Critical, st.Unknown)
}

func renderCards(w io.Writer, cards []present.Card, color bool) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "no websites yet; add one with `uptimectl add <url>`")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tURL\tUPTIME\tLAST 30 MIN\tLAST CHECKED")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			paint(string(c.State), stateColor[c.State], color),
			c.URL,
			paint(c.Uptime, severityColor[c.Severity], color),
			c.Strip,
			c.LastChecked,
		)
	}
	_ = tw.Flush()
}

// renderUnavailable is the banner shown when a watched refresh fails.
func renderUnavailable(w io.Writer, err error, retry time.Duration) {
	fmt.Fprintf(w, "! dashboard unavailable (%v), retrying in %s\n", err, retry)
}
