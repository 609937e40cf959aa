// Package handler serves a single HTML object from S3 as the response of
// an ALB lambda target.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"

	"github.com/spatocode/s3html"
	"github.com/spatocode/s3html/cloud/aws"
	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const contentType = "text/html"

// Fetcher reads an object from the configured bucket.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Handler answers every invocation with the configured page.
type Handler struct {
	config *config.Config
	store  func() (Fetcher, error)
}

// New creates a handler whose S3 client is built on first use and
// shared by every later invocation.
func New(cfg *config.Config) *Handler {
	return &Handler{
		config: cfg,
		store: sync.OnceValues(func() (Fetcher, error) {
			awsCfg, err := aws.LoadConfig(context.Background(), cfg.Region)
			if err != nil {
				return nil, err
			}
			return aws.NewS3(cfg, awsCfg), nil
		}),
	}
}

// NewWithFetcher creates a handler reading through f.
func NewWithFetcher(cfg *config.Config, f Fetcher) *Handler {
	return &Handler{
		config: cfg,
		store: func() (Fetcher, error) {
			return f, nil
		},
	}
}

// Handle is the lambda entry point. The request is not inspected and the
// returned error is always nil; failures are reported as error pages.
func (h *Handler) Handle(ctx context.Context, _ events.ALBTargetGroupRequest) (events.ALBTargetGroupResponse, error) {
	body, status := h.page(ctx)
	return Response(status, body), nil
}

// Response builds the ALB response for status and body.
func Response(status int, body string) events.ALBTargetGroupResponse {
	return events.ALBTargetGroupResponse{
		StatusCode:        status,
		StatusDescription: statusDescription(status),
		IsBase64Encoded:   false,
		Headers: map[string]string{
			"Content-Type": contentType,
		},
		Body: body,
	}
}

func statusDescription(status int) string {
	if status == http.StatusOK {
		return fmt.Sprintf("%d OK", status)
	}
	return fmt.Sprintf("%d Error", status)
}

// page fetches the page and maps failures to an error page and status.
func (h *Handler) page(ctx context.Context) (string, int) {
	if err := h.config.Validate(); err != nil {
		log.Error("page not configured", "error", err)
		return h.errorPage(err)
	}

	data, err := h.fetch(ctx)
	if err != nil {
		body, status := h.errorPage(err)
		log.Error("page fetch failed", "bucket", h.config.Bucket, "key", h.config.Key, "status", status, "error", err)
		return body, status
	}

	log.Debug("page fetched", "bucket", h.config.Bucket, "key", h.config.Key, "bytes", len(data))
	return string(data), http.StatusOK
}

func (h *Handler) fetch(ctx context.Context) ([]byte, error) {
	store, err := h.store()
	if err != nil {
		return nil, err
	}

	data, err := store.Fetch(ctx, h.config.Key)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8", h.config.Key)
	}
	return data, nil
}

func (h *Handler) errorPage(err error) (string, int) {
	var storageErr *s3html.StorageError
	switch {
	case errors.Is(err, s3html.ErrMissingConfiguration):
		return ErrorPage(s3html.ErrMissingConfiguration.Error()), http.StatusInternalServerError
	case errors.Is(err, s3html.ErrObjectNotFound):
		return ErrorPage(fmt.Sprintf("File not found: %s", h.config.Key)), http.StatusNotFound
	case errors.Is(err, s3html.ErrBucketNotFound):
		return ErrorPage(fmt.Sprintf("Bucket not found: %s", h.config.Bucket)), http.StatusNotFound
	case errors.Is(err, s3html.ErrAccessDenied):
		return ErrorPage("Access denied to S3 bucket"), http.StatusForbidden
	case errors.As(err, &storageErr):
		return ErrorPage(fmt.Sprintf("S3 Error: %s", storageErr.Message)), http.StatusInternalServerError
	default:
		return ErrorPage(fmt.Sprintf("Unexpected error: %s", err)), http.StatusInternalServerError
	}
}
