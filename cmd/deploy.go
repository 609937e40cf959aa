/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html"
	"github.com/spatocode/s3html/internal/log"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the function",
	Long:  "Package a bootstrap binary and create or update the lambda function",
	Run: func(cmd *cobra.Command, args []string) {
		binary, _ := cmd.Flags().GetString("binary")

		p, cfg, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := p.Deploy(cmd.Context(), binary); err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := cfg.ToJson(configFile); err != nil {
			log.PrintWarn(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringP("binary", "b", s3html.BootstrapFile, "Path to the bootstrap binary built for the lambda runtime")
}
