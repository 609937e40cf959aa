/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/internal/log"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Invoke the deployed function",
	Long:  "Invoke the deployed function with an ALB request and print its response",
	Run: func(cmd *cobra.Command, args []string) {
		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		resp, err := p.Invoke(cmd.Context())
		if err != nil {
			log.PrintError(err.Error())
			return
		}
		if err := printResponse(cmd.OutOrStdout(), resp); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
}
