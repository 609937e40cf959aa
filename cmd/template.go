/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spatocode/s3html"
	awsCloud "github.com/spatocode/s3html/cloud/aws"
	"github.com/spatocode/s3html/internal/log"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Render a CloudFormation template",
	Long:  "Render a CloudFormation template putting the function behind an ALB target group",
	Run: func(cmd *cobra.Command, args []string) {
		codeKey, _ := cmd.Flags().GetString("code-key")
		output, _ := cmd.Flags().GetString("output")
		validate, _ := cmd.Flags().GetBool("validate")
		upload, _ := cmd.Flags().GetBool("upload")
		binary, _ := cmd.Flags().GetString("binary")

		p, cfg, awsCfg, err := loadProject(cmd)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if upload {
			if err := p.Stage(cmd.Context(), binary, codeKey); err != nil {
				log.PrintError(err.Error())
				return
			}
		}

		tpl := awsCloud.NewTemplate(cfg, awsCfg)
		body, err := tpl.Render(codeKey)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		if validate {
			if err := tpl.Validate(cmd.Context(), body); err != nil {
				log.PrintError(err.Error())
				return
			}
		}

		if output == "" {
			cmd.OutOrStdout().Write(append(body, '\n'))
			return
		}
		if err := os.WriteFile(output, body, 0o644); err != nil {
			log.PrintError(err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().String("code-key", s3html.ArchiveFile, "Key of the function zip in the bucket")
	templateCmd.Flags().StringP("output", "o", "", "Write the template to a file instead of stdout")
	templateCmd.Flags().Bool("validate", false, "Validate the template with CloudFormation")
	templateCmd.Flags().Bool("upload", false, "Package the binary and upload it under --code-key")
	templateCmd.Flags().StringP("binary", "b", s3html.BootstrapFile, "Path to the bootstrap binary uploaded with --upload")
}
