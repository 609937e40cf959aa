/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spatocode/s3html"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "s3html",
	Short:   "Serve an HTML page from S3 behind an ALB",
	Long:    `Publish, deploy and operate a lambda that serves index.html from S3 to an Application Load Balancer`,
	Version: s3html.Version,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		s3html.Verbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose mode")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", s3html.DefaultConfigFile, "Project file")
}
