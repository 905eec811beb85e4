package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/db47h/syncsim/probe"
)

type styles struct {
	label lipgloss.Style
	value lipgloss.Style
	bus   lipgloss.Style
	warn  lipgloss.Style
}

func newStyles() styles {
	return styles{
		label: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(4)),
		value: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		bus:   lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
		warn:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
	}
}

// report prints measurements, styled or not.
type report struct {
	w      io.Writer
	styled bool
	styles styles

	n             int
	min, max, sum uint
}

func newReport(w io.Writer, styled bool) *report {
	return &report{w: w, styled: styled, styles: newStyles()}
}

func (r *report) render(s lipgloss.Style, str string) string {
	if !r.styled {
		return str
	}
	return s.Render(str)
}

func (r *report) line(i int, cycle uint64, iv probe.Interval) {
	if r.n == 0 || iv.Main < r.min {
		r.min = iv.Main
	}
	if iv.Main > r.max {
		r.max = iv.Main
	}
	r.sum += iv.Main
	r.n++
	fmt.Fprintf(r.w, "%s %s cycles (pre %d) %s\n",
		r.render(r.styles.label, fmt.Sprintf("line %3d @%-8d", i, cycle)),
		r.render(r.styles.value, fmt.Sprintf("%6d", iv.Main)),
		iv.Pre,
		r.render(r.styles.bus, fmt.Sprintf("out 0x%02x/0x%02x", iv.PreOut, iv.MidOut)))
}

func (r *report) summary(cycles uint64) {
	if r.n == 0 {
		fmt.Fprintln(r.w, r.render(r.styles.warn, fmt.Sprintf("no interval measured in %d cycles", cycles)))
		return
	}
	fmt.Fprintf(r.w, "%s min %d, max %d, mean %.2f over %d lines, %d cycles\n",
		r.render(r.styles.label, "summary"),
		r.min, r.max, float64(r.sum)/float64(r.n), r.n, cycles)
}
