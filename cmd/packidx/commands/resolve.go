package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/packidx/internal/attr"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/registry"
	"github.com/thoreinstein/packidx/internal/resolve"
)

var (
	resolveVendor string
	resolveAttrs  []string
	resolveStrict bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveVendor, "vendor", "", "device vendor (Dvendor)")
	resolveCmd.Flags().StringArrayVar(&resolveAttrs, "attr", nil, "additional selection attribute key=value, repeatable")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "fail unless the selection evaluates to a match")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <device>",
	Short: "Resolve a project's device selection",
	Long: `Resolve a device selection the way a project records it: by device or
variant name, vendor and optionally the processor (Pname). The selection is
then checked against the resolved device: match, mismatch, or unavailable
when the providing pack is not installed.`,
	Example: `  packidx resolve STM32F407VG --vendor STMicroelectronics
  packidx resolve LPC55S69JBD100 --attr Pname=cm33_core0 --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		selection, err := selectionFrom(args[0], resolveVendor, resolveAttrs)
		if err != nil {
			return err
		}
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runResolve(c.OutOrStdout(), reg, selection, resolveStrict)
	},
}

// selectionFrom builds the project attributes for a device name.
func selectionFrom(name, vendorName string, pairs []string) (attr.Attributes, error) {
	selection := attr.Attributes{attr.Dname: name}
	if vendorName != "" {
		selection[attr.Dvendor] = vendorName
	}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, pkerrors.NewUserError(errors.Newf("malformed attribute %q", kv), "Use --attr key=value")
		}
		selection[strings.TrimSpace(k)] = v
	}
	return selection, nil
}

func runResolve(w io.Writer, reg *registry.Registry, selection attr.Attributes, strict bool) error {
	d, ok := resolve.Resolve(reg.Tree(), selection)
	if !ok {
		return pkerrors.NewUserError(
			errors.Wrapf(pkerrors.ErrNotFound, "device %s", selection.Get(attr.Dname)),
			"Run: packidx devices find "+selection.Get(attr.Dname))
	}

	fmt.Fprintf(w, "%s %s\n", bold(d.Name()), faint(d.Evaluation().String()))
	if p := d.Pack(); p != nil {
		fmt.Fprintf(w, "  pack:      %s (%s)\n", p.ID(), stateColor(p.State()))
	}
	if proc, ok := d.ProcessorName(); ok && proc != "" {
		fmt.Fprintf(w, "  processor: %s\n", proc)
	}
	if s := d.Summary(); s != "" {
		fmt.Fprintf(w, "  summary:   %s\n", s)
	}

	attrs := d.Attributes()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, attrs[k])
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}

	if strict && d.Evaluation() != resolve.Match {
		return pkerrors.NewUserError(
			errors.Newf("device %s evaluates to %s", d.Name(), d.Evaluation()),
			"Install the providing pack or correct the selection attributes")
	}
	return nil
}
