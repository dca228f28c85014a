package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/wfunc/bugg-bot/internal/app"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/logger"
)

// cli 命令共享的参数和懒加载的组件
type cli struct {
	configPath string
	logLevel   string
	asJSON     bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "buggctl",
		Short:        "bugg 运维工具：查看和操作神器、查询战绩",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "error", "日志级别")
	rootCmd.PersistentFlags().BoolVar(&c.asJSON, "json", false, "以 JSON 输出")

	rootCmd.AddCommand(
		newArtifactCmd(c),
		newHistoryCmd(c),
		newConfigCmd(c),
	)
	return rootCmd
}

// open 读取配置并装配组件，调用方负责 Close
func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	logCfg.Level = c.logLevel
	logCfg.Output = "stderr"
	logCfg.Modules = nil
	if err := logger.Init(&logCfg); err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logger.GetLogger())
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
