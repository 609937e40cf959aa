/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/internal/log"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show function logs",
	Long:  "Show function logs",
	Run: func(cmd *cobra.Command, args []string) {
		follow, _ := cmd.Flags().GetBool("follow")

		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := p.Logs(cmd.Context(), follow); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolP("follow", "f", false, "Keep polling for new log events")
}
