package commands

import (
	"github.com/fatih/color"

	"github.com/thoreinstein/packidx/internal/pack"
)

// All helpers return plain text while color.NoColor is set.
var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func stateColor(s pack.State) string {
	var c *color.Color
	switch s {
	case pack.StateInstalled, pack.StateGenerated:
		c = color.New(color.FgGreen)
	case pack.StateDownloaded, pack.StateDownloadable:
		c = color.New(color.FgYellow)
	case pack.StateError:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgWhite)
	}
	return c.Sprint(s.String())
}
