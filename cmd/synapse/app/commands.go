package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/synapseflow/gateway/internal/cmd/output"
	"github.com/synapseflow/gateway/internal/server/filter"
)

// NewToolsCommand creates the tools command.
func (a *App) NewToolsCommand() *cobra.Command {
	var (
		categories bool
		f          filter.ToolFilter
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		Example: `  synapse tools
  synapse tools --categories
  synapse tools --source agentdb -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(a.config.Format)
			if err != nil {
				return err
			}
			format = output.DetectFormat(string(format))

			catalog, err := a.Catalog()
			if err != nil {
				return err
			}

			if categories {
				return output.FormatCategories(cmd.OutOrStdout(), catalog, format)
			}
			list := catalog.Tools()
			if f.Active() {
				list = f.Apply(list)
			}
			return output.FormatTools(cmd.OutOrStdout(), list, format)
		},
	}

	cmd.Flags().BoolVar(&categories, "categories", false, "summarize tools per category")
	cmd.Flags().StringVar(&f.Source, "source", "", "only tools from this source")
	cmd.Flags().StringVar(&f.Category, "category", "", "only tools in this category (bare or source:category)")
	cmd.Flags().StringVar(&f.NameContains, "name", "", "only tools whose name contains this text")

	return cmd
}

// versionInfo is the payload of the version command.
type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	BuiltBy string `json:"built_by" yaml:"built_by"`
	Go      string `json:"go" yaml:"go"`
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(a.config.Format)
			if err != nil {
				return err
			}
			info := versionInfo{
				Version: a.version,
				Commit:  a.commit,
				Date:    a.date,
				BuiltBy: a.builtBy,
				Go:      runtime.Version(),
			}
			return output.NewFormatter(output.DetectFormat(string(format))).Format(cmd.OutOrStdout(), info)
		},
	}
}
