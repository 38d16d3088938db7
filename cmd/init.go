package cmd

import (
	"fmt"
	"os"

	"github.com/Hayser8/laboratorio3redes/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [id]",
	Short: "Create config files for one node",
	Long: `Writes a node config for the given id, and a sample central config if none
exists yet. Edit the central config to describe the real topology and share it
between all nodes.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			return
		}
		id := state.Node(args[0])

		nodeCfg := state.LocalCfg{
			Id:     id,
			Metric: state.MetricHop,
		}
		ncfg, err := yaml.Marshal(&nodeCfg)
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(nodeConfigPath, ncfg, 0700)
		if err != nil {
			panic(err)
		}
		fmt.Printf("wrote %s\n", nodeConfigPath)

		if _, err := os.Stat(centralConfigPath); err == nil {
			return
		}
		sample := state.CentralCfg{
			Nodes: []state.NodeCfg{
				{Id: id, Address: fmt.Sprintf("127.0.0.1:%d", state.DefaultPort)},
				{Id: "peer", Address: fmt.Sprintf("127.0.0.1:%d", state.DefaultPort+1)},
			},
			Links: []state.LinkCfg{
				{A: id, B: "peer", Cost: 1},
			},
		}
		ccfg, err := yaml.Marshal(&sample)
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(centralConfigPath, ccfg, 0700)
		if err != nil {
			panic(err)
		}
		fmt.Printf("wrote sample %s\n", centralConfigPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
