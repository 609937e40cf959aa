/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/internal/log"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show function metrics",
	Long:  "Show invocations, errors and error rate of the function over the last 24 hours",
	Run: func(cmd *cobra.Command, args []string) {
		p, _, _, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		m, err := p.Metrics(cmd.Context())
		if err != nil {
			log.PrintError(err.Error())
			return
		}
		log.PrintResult(fmt.Sprintf("Invocations: %.0f", m.Invocations))
		log.PrintResult(fmt.Sprintf("Errors:      %.0f", m.Errors))
		log.PrintResult(fmt.Sprintf("Error rate:  %.2f%%", m.ErrorRate()))
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
