package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dhcpdleases/pkg/utils"
)

const (
	configFile = "dhcpleases.ini"
)

var (
	sha1ver   string
	buildTime string
	repoName  = "dhcpleases"
)

func main() {
	utils.CheckFatal(newRootCmd().Execute(), repoName)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dhcpleases",
		Short: "Inspect dhcpd.leases files",
		Long: `dhcpleases reads the lease database written by the BSD and ISC dhcpd
servers. "show" queries a lease file once; "serve" watches one and
answers queries over HTTP.`,
		Version:       fmt.Sprintf("build %s, time %s", sha1ver, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", configFile, "INI configuration file")

	rootCmd.AddCommand(newServeCmd(&cfgFile), newShowCmd(&cfgFile))
	return rootCmd
}
