package cmd

import (
	"log/slog"
	"os"

	"github.com/Hayser8/laboratorio3redes/core"
	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the routing node",
	Long:  `Starts the node on the current host using the central and node config files.`,
	Run: func(cmd *cobra.Command, args []string) {
		var centralCfg state.CentralCfg
		file, err := os.ReadFile(centralConfigPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &centralCfg)
		if err != nil {
			panic(err)
		}

		var nodeCfg state.LocalCfg
		file, err = os.ReadFile(nodeConfigPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &nodeCfg)
		if err != nil {
			panic(err)
		}

		err = state.CentralConfigValidator(&centralCfg)
		if err != nil {
			panic(err)
		}
		err = state.LocalConfigValidator(&nodeCfg, &centralCfg)
		if err != nil {
			panic(err)
		}
		state.ExpandLocalConfig(&nodeCfg, &centralCfg)

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(centralCfg, nodeCfg, level)
		if err != nil {
			panic(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolVarP(&state.DBG_log_router, "lroute", "r", false, "Write lsp/spf activity to console")
	runCmd.Flags().BoolVarP(&state.DBG_log_probe, "lprobe", "p", false, "Write hello/echo probes to console")
	runCmd.Flags().BoolVarP(&state.DBG_log_table, "ltable", "t", false, "Write the route table to console on every recomputation")
}
