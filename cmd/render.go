/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"encoding/json"
	"io"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/handler"
	"github.com/spatocode/s3html/internal/log"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run the handler locally",
	Long:  "Run the handler locally with the S3_BUCKET and AWS_REGION environment and print the ALB response",
	Run: func(cmd *cobra.Command, args []string) {
		h := handler.New(config.FromEnv())
		resp, _ := h.Handle(cmd.Context(), events.ALBTargetGroupRequest{HTTPMethod: "GET", Path: "/"})
		if err := printResponse(cmd.OutOrStdout(), &resp); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func printResponse(w io.Writer, resp *events.ALBTargetGroupResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
