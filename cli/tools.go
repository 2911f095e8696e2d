package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/toolgate/config"
	"github.com/petal-labs/toolgate/tool"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the tool catalog",
	}
	cmd.PersistentFlags().String("config", "", "Path to toolgate.yaml")

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInspectCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tool the gateway serves",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, def := range catalog.All() {
		fmt.Fprintf(w, "%s\t%s\n", def.Name, def.Description)
	}
	return w.Flush()
}

func newToolsInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Print a tool's description and input schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsInspect,
	}
}

func runToolsInspect(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	def, ok := catalog.Get(args[0])
	if !ok {
		return exitError(1, "unknown tool %q", args[0])
	}

	schema, err := json.MarshalIndent(def.Schema.JSONSchema(), "", "  ")
	if err != nil {
		return exitError(1, "encoding schema: %v", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name: %s\n", def.Name)
	fmt.Fprintf(out, "Description: %s\n", def.Description)
	fmt.Fprintf(out, "Input schema:\n%s\n", schema)
	return nil
}

func loadCatalog(cmd *cobra.Command) (*tool.Catalog, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, exitError(1, "loading config: %v", err)
	}
	catalog, err := buildCatalog(cfg)
	if err != nil {
		return nil, exitError(1, "building catalog: %v", err)
	}
	return catalog, nil
}
