package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/devtree"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/registry"
	"github.com/thoreinstein/packidx/internal/resolve"
)

var (
	devicesVendor     string
	devicesDepth      int
	devicesOnlyDevice bool
	devicesJSON       bool
)

func init() {
	devicesTreeCmd.Flags().StringVar(&devicesVendor, "vendor", "", "only show this vendor's subtree")
	devicesTreeCmd.Flags().IntVar(&devicesDepth, "depth", 0, "stop after this many levels below the start node (0 = no limit)")

	devicesFindCmd.Flags().StringVar(&devicesVendor, "vendor", "", "search only this vendor's subtree")
	devicesFindCmd.Flags().BoolVar(&devicesOnlyDevice, "only-device", false, "skip family and sub-family matches")
	devicesFindCmd.Flags().BoolVar(&devicesJSON, "json", false, "output in JSON format")

	devicesCmd.AddCommand(devicesTreeCmd, devicesFindCmd, devicesPickCmd)
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Browse the device hierarchy",
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

var devicesTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the device hierarchy",
	Example: `  packidx devices tree --vendor NXP --depth 2`,
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runDevicesTree(c.OutOrStdout(), reg, devicesVendor, devicesDepth)
	},
}

var devicesFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find a node of the device hierarchy by name",
	Long: `Find a family, sub-family, device, variant or processor node by name.
Names compare case-insensitively. A name containing '*' that matches a node
literally selects the group the node belongs to.`,
	Example: `  packidx devices find STM32F407VG
  packidx devices find STM32F4 --vendor ST
  packidx devices find 'LPC55S6x:cm33_core0' --only-device`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runDevicesFind(c.OutOrStdout(), reg, args[0], devicesVendor, devicesOnlyDevice, devicesJSON)
	},
}

func runDevicesTree(w io.Writer, reg *registry.Registry, vendorName string, depth int) error {
	start := reg.Tree()
	if vendorName != "" {
		start = start.VendorNodeFor(vendorName)
		if start == nil {
			return pkerrors.NewUserError(errors.Wrapf(pkerrors.ErrNotFound, "vendor %s", vendorName), "Run: packidx devices tree")
		}
	}
	if start.ChildCount() == 0 {
		fmt.Fprintln(w, "No devices found.")
		return nil
	}
	writeNode(w, start, 0, depth)
	return nil
}

func writeNode(w io.Writer, n *devtree.Node, indent, depth int) {
	label := n.Name()
	if n.IsDevice() {
		label = cyan(label)
	}
	line := strings.Repeat("  ", indent) + label + " " + faint("("+n.Level().String()+")")
	if n.IsDevice() {
		if d := n.Device(); d != nil {
			line += " " + faint(d.Pack().ID())
		}
	}
	fmt.Fprintln(w, line)

	if depth > 0 && indent >= depth {
		return
	}
	for _, c := range n.Children() {
		writeNode(w, c, indent+1, depth)
	}
}

type nodeJSON struct {
	Name        string   `json:"name"`
	Level       string   `json:"level"`
	Vendor      string   `json:"vendor"`
	Path        []string `json:"path"`
	Packs       []string `json:"packs"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

func describeNode(n *devtree.Node) nodeJSON {
	out := nodeJSON{
		Name:        n.Name(),
		Level:       n.Level().String(),
		Vendor:      n.VendorName(),
		Packs:       n.AllPackIDs(),
		Description: n.Description(),
		URL:         n.URL(),
	}
	for cur := n; cur != nil && cur.Level() > pack.LevelRoot; cur = cur.Parent() {
		out.Path = append([]string{cur.Name()}, out.Path...)
	}
	if n.IsDevice() {
		out.Summary = resolve.New(n, nil).Summary()
	}
	return out
}

func runDevicesFind(w io.Writer, reg *registry.Registry, name, vendorName string, onlyDevice, asJSON bool) error {
	n := reg.Tree().FindItem(name, vendorName, onlyDevice)
	if n == nil {
		return pkerrors.NewUserError(errors.Wrapf(pkerrors.ErrNotFound, "device %s", name), "Run: packidx devices tree")
	}

	info := describeNode(n)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(info), "encoding output")
	}

	fmt.Fprintf(w, "%s (%s)\n", bold(info.Name), info.Level)
	fmt.Fprintf(w, "  path:    %s\n", strings.Join(info.Path, " / "))
	if info.Summary != "" {
		fmt.Fprintf(w, "  summary: %s\n", info.Summary)
	}
	if info.Description != "" {
		fmt.Fprintf(w, "  about:   %s\n", info.Description)
	}
	if info.URL != "" {
		fmt.Fprintf(w, "  url:     %s\n", info.URL)
	}
	fmt.Fprintf(w, "  packs:   %s\n", strings.Join(info.Packs, ", "))
	return nil
}
