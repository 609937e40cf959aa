/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

var publishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Upload the page to the bucket",
	Long:  "Upload an HTML file to the bucket as index.html, creating the bucket when missing",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		page := config.PageKey
		if len(args) == 1 {
			page = args[0]
		}

		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := p.Publish(cmd.Context(), page); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
