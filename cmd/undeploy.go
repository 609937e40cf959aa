/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/internal/log"
)

var undeployCmd = &cobra.Command{
	Use:   "undeploy",
	Short: "Undeploy the function",
	Long:  "Delete the lambda function, its execution role and its logs",
	Run: func(cmd *cobra.Command, args []string) {
		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := p.Undeploy(cmd.Context()); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(undeployCmd)
}
