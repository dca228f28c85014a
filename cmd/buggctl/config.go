package main

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/wfunc/bugg-bot/internal/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "导出合并后的生效配置（TOML）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Settings(c.configPath)
			if err != nil {
				return err
			}
			if c.asJSON {
				return writeJSON(cmd, settings)
			}
			enc := toml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndentTables(true)
			return enc.Encode(settings)
		},
	}
}
