package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/pack"
	"github.com/thoreinstein/packidx/internal/registry"
)

var (
	packsListAll  bool
	packsListJSON bool
)

func init() {
	packsListCmd.Flags().BoolVar(&packsListAll, "all", false, "list every known version, not only installed and newest")
	packsListCmd.Flags().BoolVar(&packsListJSON, "json", false, "output in JSON format")

	packsCmd.AddCommand(packsListCmd, packsLatestCmd, packsShowCmd)
	rootCmd.AddCommand(packsCmd)
}

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "Inspect the pack collection",
	RunE: func(c *cobra.Command, _ []string) error {
		return c.Help()
	},
}

var packsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packs with their state",
	Long: `List the installed packs of every family plus each family's newest
version. The pack a family resolves to is marked with '*'.`,
	Example: `  packidx packs list
  packidx packs list --all --json`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runPacksList(c.OutOrStdout(), reg, packsListAll, packsListJSON)
	},
}

var packsLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the id of the pack each family resolves to",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		for _, id := range reg.Packs().LatestPackIDs() {
			fmt.Fprintln(c.OutOrStdout(), id)
		}
		return nil
	},
}

var packsShowCmd = &cobra.Command{
	Use:   "show <pack-id>",
	Short: "Show one pack and its device declarations",
	Long: `Show one pack. A family id without version ("Keil.STM32F4xx_DFP")
shows the version the family resolves to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		reg, err := loadRegistry(c.Context(), appConfig)
		if err != nil {
			return err
		}
		return runPacksShow(c.OutOrStdout(), reg, args[0])
	},
}

type packJSON struct {
	ID       string `json:"id"`
	Family   string `json:"family"`
	Version  string `json:"version"`
	State    string `json:"state"`
	Latest   bool   `json:"latest"`
	InTree   bool   `json:"in_tree"`
	FileName string `json:"file,omitempty"`
}

func runPacksList(w io.Writer, reg *registry.Registry, all, asJSON bool) error {
	packs := reg.Packs().Packs()
	if all {
		packs = reg.Packs().All()
	}
	inTree := make(map[string]bool)
	for _, id := range reg.TreePackIDs() {
		inTree[id] = true
	}
	latest := make(map[string]bool)
	for _, id := range reg.Packs().LatestPackIDs() {
		latest[id] = true
	}

	if asJSON {
		out := make([]packJSON, 0, len(packs))
		for _, p := range packs {
			out = append(out, packJSON{
				ID:       p.ID(),
				Family:   p.FamilyID(),
				Version:  p.Version(),
				State:    p.State().String(),
				Latest:   latest[p.ID()],
				InTree:   inTree[p.ID()],
				FileName: p.FileName(),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding output")
	}

	if len(packs) == 0 {
		fmt.Fprintln(w, "No packs found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PACK\tVERSION\tSTATE\t")
	for _, p := range packs {
		mark := ""
		if latest[p.ID()] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.FamilyID(), p.Version(), stateColor(p.State()), mark)
	}
	return errors.Wrap(tw.Flush(), "writing output")
}

func runPacksShow(w io.Writer, reg *registry.Registry, id string) error {
	p := reg.Packs().Pack(id)
	if p == nil {
		return pkerrors.NewUserError(errors.Wrapf(pkerrors.ErrNotFound, "pack %s", id), "Run: packidx packs list --all")
	}

	fmt.Fprintf(w, "%s %s\n", bold(p.ID()), stateColor(p.State()))
	if p.Description() != "" {
		fmt.Fprintf(w, "  %s\n", p.Description())
	}
	if p.URL() != "" {
		fmt.Fprintf(w, "  url:  %s\n", p.URL())
	}
	if p.FileName() != "" {
		fmt.Fprintf(w, "  file: %s\n", p.FileName())
	}
	if f, ok := reg.Packs().Family(p.FamilyID()); ok && f.Len() > 1 {
		var versions []string
		for _, other := range f.All() {
			versions = append(versions, other.Version())
		}
		fmt.Fprintf(w, "  versions: %s\n", strings.Join(versions, ", "))
	}

	if len(p.Devices()) == 0 {
		return nil
	}
	fmt.Fprintln(w, "  devices:")
	for _, d := range p.Devices() {
		writeDeclaration(w, d, 2)
	}
	return nil
}

func writeDeclaration(w io.Writer, d *pack.Device, depth int) {
	fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), d.Name(), faint("("+d.Level().String()+")"))
	for _, sub := range d.Devices() {
		writeDeclaration(w, sub, depth+1)
	}
}
