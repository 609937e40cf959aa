package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/spatocode/s3html"
	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const (
	pageContentType    = "text/html"
	archiveContentType = "application/zip"
)

// API is the subset of the S3 client used by S3.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type S3 struct {
	config    *config.Config
	awsConfig aws.Config
	client    API
}

// NewS3 creates a new AWS S3 object
func NewS3(config *config.Config, awsConfig aws.Config) *S3 {
	return &S3{
		config:    config,
		awsConfig: awsConfig,
		client:    s3.NewFromConfig(awsConfig),
	}
}

// Fetch reads the object at key from the configured bucket
func (s *S3) Fetch(ctx context.Context, key string) ([]byte, error) {
	log.Debug("fetching s3 object", "bucket", s.config.Bucket, "key", key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3 object %s: %w", key, err)
	}
	return data, nil
}

// Upload puts a local HTML file under the page key
func (s *S3) Upload(ctx context.Context, filePath string) error {
	return s.put(ctx, filePath, s.config.Key, pageContentType)
}

// UploadArchive puts a function zip under key, where a stack or a deploy
// can read it from.
func (s *S3) UploadArchive(ctx context.Context, zipPath, key string) error {
	return s.put(ctx, zipPath, key, archiveContentType)
}

func (s *S3) put(ctx context.Context, filePath, key, contentType string) error {
	f, err := os.Stat(filePath)
	if err != nil || f.IsDir() || f.Size() == 0 {
		return fmt.Errorf("encountered issue with file %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	log.Debug(fmt.Sprintf("uploading file %s as %s...", filePath, key))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("encountered error while uploading %s: %w", key, classify(err))
	}
	return nil
}

// Accessible checks that the bucket exists and can be reached
func (s *S3) Accessible(ctx context.Context) error {
	log.Debug(fmt.Sprintf("checking s3 bucket %s...", s.config.Bucket))
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err != nil {
		log.Debug(fmt.Sprintf("s3 bucket error %#v", err))
		var nfErr *s3Types.NotFound
		if errors.As(err, &nfErr) {
			return s3html.ErrBucketNotFound
		}
		// HEAD responses carry no body, so a denied bucket surfaces as Forbidden
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "Forbidden" {
			return fmt.Errorf("%w: %s", s3html.ErrAccessDenied, err)
		}
		return classify(err)
	}
	return nil
}

// Delete removes an object from the bucket
func (s *S3) Delete(ctx context.Context, key string) error {
	log.Debug(fmt.Sprintf("deleting s3 bucket object %s...", key))
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// CreateBucket creates the configured bucket in the configured region
func (s *S3) CreateBucket(ctx context.Context) error {
	log.Debug(fmt.Sprintf("creating s3 bucket %s...", s.config.Bucket))
	input := &s3.CreateBucketInput{
		Bucket: aws.String(s.config.Bucket),
	}
	// us-east-1 rejects an explicit location constraint
	if s.awsConfig.Region != "" && s.awsConfig.Region != "us-east-1" {
		input.CreateBucketConfiguration = &s3Types.CreateBucketConfiguration{
			LocationConstraint: s3Types.BucketLocationConstraint(s.awsConfig.Region),
		}
	}
	_, err := s.client.CreateBucket(ctx, input)
	return err
}

// classify maps S3 failures onto the page error taxonomy. Errors that
// did not come from the service are returned unchanged.
func classify(err error) error {
	var nsk *s3Types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", s3html.ErrObjectNotFound, err)
	}
	var nsb *s3Types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %s", s3html.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey":
		return fmt.Errorf("%w: %s", s3html.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %s", s3html.ErrBucketNotFound, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %s", s3html.ErrAccessDenied, err)
	}
	return &s3html.StorageError{
		Code:    apiErr.ErrorCode(),
		Message: apiErr.ErrorMessage(),
	}
}
