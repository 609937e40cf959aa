/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/internal/log"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the page is readable",
	Long:  "Check the bucket is reachable and the page can be read from it",
	Run: func(cmd *cobra.Command, args []string) {
		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := p.Check(cmd.Context()); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
