package version

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/authorizedtester/testgate/cmd/util/flags/cliflags"
	"github.com/authorizedtester/testgate/cmd/util/output"
	"github.com/authorizedtester/testgate/pkg/models"
	"github.com/authorizedtester/testgate/pkg/version"
)

type VersionOptions struct {
	OutputOpts output.OutputOptions
}

func NewVersionOptions() *VersionOptions {
	return &VersionOptions{
		OutputOpts: output.OutputOptions{Format: output.TableFormat},
	}
}

func NewCmd() *cobra.Command {
	oV := NewVersionOptions()

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Get the testgate version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := oV.Run(cmd); err != nil {
				return fmt.Errorf("error running version: %w", err)
			}
			return nil
		},
	}
	versionCmd.Flags().AddFlagSet(cliflags.OutputFormatFlags(&oV.OutputOpts))

	return versionCmd
}

var versionColumns = []output.TableColumn[*models.BuildVersionInfo]{
	{
		ColumnConfig: table.ColumnConfig{Name: "version"},
		Value:        func(v *models.BuildVersionInfo) string { return v.GitVersion },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "commit"},
		Value:        func(v *models.BuildVersionInfo) string { return v.GitCommit },
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "built"},
		Value: func(v *models.BuildVersionInfo) string {
			if v.BuildDate.IsZero() {
				return ""
			}
			return v.BuildDate.Format(time.RFC3339)
		},
	},
	{
		ColumnConfig: table.ColumnConfig{Name: "platform"},
		Value:        func(v *models.BuildVersionInfo) string { return v.GOOS + "/" + v.GOARCH },
	},
}

func (oV *VersionOptions) Run(cmd *cobra.Command) error {
	return output.OutputOne(cmd, versionColumns, oV.OutputOpts, version.Get())
}
