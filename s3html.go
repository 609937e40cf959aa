package s3html

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const (
	Version           = "0.1.0"
	DefaultConfigFile = "s3html.json"
	ArchiveFile       = "s3html.zip"
	BootstrapFile     = "bootstrap"
)

var ReadConfig = config.ReadConfig

// Project holds details of a deployed page
type Project struct {
	config  *config.Config
	cloud   CloudPlatform
	storage CloudStorage
	monitor CloudMonitor
}

// New creates a new project
func New(cfg *config.Config) (*Project, error) {
	if cfg == nil {
		return nil, errors.New("missing project configuration")
	}
	p := &Project{config: cfg}
	return p, nil
}

// SetPlatform sets the cloud platform
func (p *Project) SetPlatform(cloud CloudPlatform) {
	p.cloud = cloud
}

// SetStorage sets the bucket the page is served from
func (p *Project) SetStorage(storage CloudStorage) {
	p.storage = storage
}

// SetMonitor sets the log and metrics source
func (p *Project) SetMonitor(monitor CloudMonitor) {
	p.monitor = monitor
}

// Publish uploads the page to the bucket, creating the bucket when missing.
func (p *Project) Publish(ctx context.Context, pagePath string) error {
	log.PrintInfo(fmt.Sprintf("Publishing %s to bucket %s...", pagePath, p.config.Bucket))
	if err := p.ensureBucket(ctx); err != nil {
		return err
	}

	if err := p.storage.Upload(ctx, pagePath); err != nil {
		return err
	}
	log.PrintInfo("Done!")
	return nil
}

func (p *Project) ensureBucket(ctx context.Context) error {
	err := p.storage.Accessible(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBucketNotFound) {
		return err
	}
	log.Debug("bucket not found. creating bucket...")
	return p.storage.CreateBucket(ctx)
}

// Check verifies the page can be read from the bucket.
func (p *Project) Check(ctx context.Context) error {
	log.PrintInfo(fmt.Sprintf("Checking s3://%s/%s...", p.config.Bucket, p.config.Key))
	if err := p.storage.Accessible(ctx); err != nil {
		return err
	}
	data, err := p.storage.Fetch(ctx, p.config.Key)
	if err != nil {
		return err
	}
	log.PrintInfo(fmt.Sprintf("Found %s (%d bytes)", p.config.Key, len(data)))
	return nil
}

// Deploy packages the bootstrap binary, stages it in the bucket and
// deploys the function from there. The staged archive is removed once
// the function has been created or updated.
func (p *Project) Deploy(ctx context.Context, binary string) error {
	log.PrintInfo(fmt.Sprintf("Deploying function %s...", p.config.Name))
	if err := p.Stage(ctx, binary, ArchiveFile); err != nil {
		return err
	}

	alreadyDeployed, err := p.cloud.Deploy(ctx, ArchiveFile)
	if err != nil {
		return err
	}

	if err := p.storage.Delete(ctx, ArchiveFile); err != nil {
		log.Warn("could not remove staged archive", "key", ArchiveFile, "error", err)
	}

	if alreadyDeployed {
		log.PrintInfo("Function already deployed. Updated.")
	}
	log.PrintInfo("Done!")
	return nil
}

// Stage packages the bootstrap binary and uploads the archive to the
// bucket under codeKey. The local archive is removed afterwards.
func (p *Project) Stage(ctx context.Context, binary, codeKey string) error {
	file, err := p.Package(binary)
	if err != nil {
		return err
	}
	defer os.RemoveAll(file)

	if err := p.ensureBucket(ctx); err != nil {
		return err
	}
	log.Debug("staging archive...", "key", codeKey)
	return p.storage.UploadArchive(ctx, file, codeKey)
}

// Undeploy terminates a deployment
func (p *Project) Undeploy(ctx context.Context) error {
	log.PrintInfo(fmt.Sprintf("Undeploying function %s...", p.config.Name))
	if err := p.cloud.Undeploy(ctx); err != nil {
		return err
	}
	if err := p.monitor.Clear(ctx); err != nil {
		log.Debug(fmt.Sprintf("could not delete log group: %s", err))
	}
	log.PrintInfo("Done!")
	return nil
}

// Invoke sends an empty ALB request to the deployed function and
// returns its response.
func (p *Project) Invoke(ctx context.Context) (*events.ALBTargetGroupResponse, error) {
	payload, err := json.Marshal(events.ALBTargetGroupRequest{
		HTTPMethod: "GET",
		Path:       "/",
	})
	if err != nil {
		return nil, err
	}
	return p.cloud.Invoke(ctx, payload)
}

// Logs shows the function logs, following them when follow is set
func (p *Project) Logs(ctx context.Context, follow bool) error {
	log.PrintInfo("Fetching logs...")
	if follow {
		return p.monitor.Watch(ctx)
	}
	_, err := p.monitor.Logs(ctx, time.Time{})
	return err
}

// Metrics shows the function invocation metrics
func (p *Project) Metrics(ctx context.Context) (*Metrics, error) {
	log.PrintInfo("Fetching metrics...")
	return p.monitor.Metrics(ctx)
}

// Package zips the bootstrap binary at binary into the project directory.
func (p *Project) Package(binary string) (string, error) {
	log.Debug("packaging function...")
	f, err := os.Stat(binary)
	if err != nil {
		return "", err
	}
	if f.IsDir() || f.Size() == 0 {
		return "", fmt.Errorf("%s is not a usable bootstrap binary", binary)
	}

	archivePath := filepath.Join(p.config.Dir, ArchiveFile)
	err = archivePackage(archivePath, binary)
	return archivePath, err
}

// archivePackage writes binary into a zip archive as an executable
// named bootstrap.
func archivePackage(archivePath, binary string) error {
	log.Debug("archiving package...")
	archive, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	writer := zip.NewWriter(archive)

	f, err := os.Open(binary)
	if err != nil {
		return err
	}
	defer f.Close()

	header := &zip.FileHeader{
		Name:   BootstrapFile,
		Method: zip.Deflate,
	}
	header.SetMode(0o755)
	w, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, f); err != nil {
		return err
	}
	return writer.Close()
}

func Verbose(verbose bool) {
	if verbose {
		os.Setenv(log.VerboseEnv, "1")
	} else {
		os.Setenv(log.VerboseEnv, "0")
	}
}
