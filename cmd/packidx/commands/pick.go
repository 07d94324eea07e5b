package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/devtree"
	"github.com/thoreinstein/packidx/internal/registry"
)

var devicesPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a device interactively",
	Long: `Open a fuzzy finder over every selectable device and print the chosen
device's name. Pressing Esc or Ctrl-C prints nothing.`,
	Example: `  packidx resolve "$(packidx devices pick)"`,
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runDevicesPick(c.OutOrStdout(), reg, fuzzyfinder.Find)
	},
}

// findFunc matches fuzzyfinder.Find so tests can replace the terminal UI.
type findFunc func(slice any, itemFunc func(int) string, opts ...fuzzyfinder.Option) (int, error)

// selectableDevices returns every device leaf in tree order.
func selectableDevices(reg *registry.Registry) []*devtree.Node {
	var out []*devtree.Node
	reg.Tree().Walk(func(n *devtree.Node) bool {
		if n.IsDevice() {
			out = append(out, n)
		}
		return true
	})
	return out
}

func runDevicesPick(w io.Writer, reg *registry.Registry, find findFunc) error {
	nodes := selectableDevices(reg)
	if len(nodes) == 0 {
		fmt.Fprintln(w, "No devices found.")
		return nil
	}

	idx, err := find(
		nodes,
		func(i int) string {
			return nodes[i].Name() + "  " + nodes[i].VendorName()
		},
		fuzzyfinder.WithPromptString("device> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			return pickPreview(nodes[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "device picker")
	}

	fmt.Fprintln(w, nodes[idx].Name())
	return nil
}

func pickPreview(n *devtree.Node) string {
	info := describeNode(n)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", info.Name, strings.Join(info.Path, " / "))
	if info.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", info.Summary)
	}
	if info.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", info.Description)
	}
	fmt.Fprintf(&b, "Packs: %s", strings.Join(info.Packs, ", "))
	return b.String()
}
