package cmd

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"github.com/spatocode/s3html"
	awsCloud "github.com/spatocode/s3html/cloud/aws"
	"github.com/spatocode/s3html/config"
)

// loadProject reads the project file and wires the AWS services into a
// project.
func loadProject(cmd *cobra.Command) (*s3html.Project, *config.Config, aws.Config, error) {
	cfg, err := s3html.ReadConfig(configFile)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}

	awsCfg, err := awsCloud.LoadConfig(cmd.Context(), cfg.Region)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}

	p, err := s3html.New(cfg)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}
	p.SetStorage(awsCloud.NewS3(cfg, awsCfg))
	p.SetMonitor(awsCloud.NewCloudWatch(cfg, awsCfg))
	p.SetPlatform(awsCloud.NewLambda(cfg, awsCfg))
	return p, cfg, awsCfg, nil
}
