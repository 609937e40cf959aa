package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/spatocode/s3html/internal/log"
)

const (
	BucketEnv     = "S3_BUCKET"
	RegionEnv     = "AWS_REGION"
	DefaultRegion = "us-east-1"
	PageKey       = "index.html"
)

// ErrMissingBucket is returned by Validate when no bucket is configured.
var ErrMissingBucket = errors.New("S3_BUCKET environment variable is not set")

type Config struct {
	Name   string  `json:"name"`
	Bucket string  `json:"s3_bucket"`
	Region string  `json:"region"`
	Key    string  `json:"-"`
	Lambda *Lambda `json:"lambda"`
	Dir    string  `json:"dir"`
}

// FromEnv builds the handler configuration from the process environment.
// The bucket may be empty; callers decide how to report that.
func FromEnv() *Config {
	c := &Config{
		Bucket: os.Getenv(BucketEnv),
		Region: os.Getenv(RegionEnv),
		Key:    PageKey,
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return c
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	return nil
}

// Env is the environment the deployed function is configured with.
func (c *Config) Env() map[string]string {
	return map[string]string{
		BucketEnv: c.Bucket,
	}
}

func (c *Config) Defaults() error {
	if c.Key == "" {
		c.Key = PageKey
	}
	if c.Lambda == nil {
		c.Lambda = &Lambda{}
	}
	c.Lambda.Defaults()

	if c.Region == "" {
		if err := c.detectRegion(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) detectRegion() error {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return err
	}
	if r := cfg.Region; r != "" {
		log.Debug("extract region from aws default config", "region", r)
		c.Region = r
		return nil
	}

	log.Debug("default region", "region", DefaultRegion)
	c.Region = DefaultRegion
	return nil
}

func (c *Config) ToJson(name string) error {
	b, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(name, b, 0o644)
}

func (c *Config) init() error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	c.Name = fmt.Sprintf("%s-page", filepath.Base(workDir))
	c.Dir = workDir
	c.Bucket = os.Getenv(BucketEnv)

	if err := c.Defaults(); err != nil {
		log.Warn(err.Error())
		c.Region = DefaultRegion
	}
	return nil
}

// ReadConfig reads the project file at path. A missing file yields a
// configuration derived from the working directory.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg := &Config{}
		if err := cfg.init(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	err := json.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}
	if config.Name == "" {
		return nil, errors.New("project file is missing a function name")
	}
	if config.Dir == "" {
		config.Dir = "."
	}
	if err := config.Defaults(); err != nil {
		return nil, err
	}
	return config, nil
}
