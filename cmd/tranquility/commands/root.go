package commands

import (
	"github.com/nohmar/tranquility/src/config"
	"github.com/spf13/cobra"
)

var _config = config.NewDefaultConfig()

// RootCmd is the root command for tranquility
var RootCmd = &cobra.Command{
	Use:              "tranquility",
	Short:            "gossip broadcast node",
	TraverseChildren: true,
}
