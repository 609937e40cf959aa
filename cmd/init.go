/*
Copyright © 2023 Ekene Izukanne <ekeneizukanne@gmail.com>
*/
package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spatocode/s3html"
	"github.com/spatocode/s3html/internal/log"
	"github.com/spatocode/s3html/internal/utils"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an s3html project",
	Long:  fmt.Sprintf("Walk through the function name, bucket and region and write a %s file", s3html.DefaultConfigFile),
	Run: func(cmd *cobra.Command, args []string) {
		if utils.FileExists(configFile) {
			log.PrintError(fmt.Sprintf("project already initialized with a %s file", configFile))
			return
		}

		cfg, err := s3html.ReadConfig(configFile)
		if err != nil {
			log.PrintError(err.Error())
			return
		}

		in := bufio.NewReader(cmd.InOrStdin())
		if cfg.Name, err = utils.PromptDefault("Function name", cfg.Name, in); err != nil {
			log.PrintError(err.Error())
			return
		}
		if cfg.Bucket, err = utils.PromptDefault("S3 bucket", cfg.Bucket, in); err != nil {
			log.PrintError(err.Error())
			return
		}
		if cfg.Region, err = utils.PromptDefault("AWS region", cfg.Region, in); err != nil {
			log.PrintError(err.Error())
			return
		}

		if err := cfg.ToJson(configFile); err != nil {
			log.PrintError(err.Error())
			return
		}
		log.PrintInfo(fmt.Sprintf("Wrote %s", configFile))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
