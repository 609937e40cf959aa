package s3html

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

type CloudStorage interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, path string) error
	UploadArchive(ctx context.Context, zipPath, key string) error
	Delete(ctx context.Context, key string) error
	Accessible(ctx context.Context) error
	CreateBucket(ctx context.Context) error
}

type CloudMonitor interface {
	Logs(ctx context.Context, since time.Time) (time.Time, error)
	Watch(ctx context.Context) error
	Metrics(ctx context.Context) (*Metrics, error)
	Clear(ctx context.Context) error
}

type CloudPlatform interface {
	Deploy(ctx context.Context, codeKey string) (bool, error)
	Undeploy(ctx context.Context) error
	Invoke(ctx context.Context, payload []byte) (*events.ALBTargetGroupResponse, error)
}

// Metrics summarises function activity over the last day.
type Metrics struct {
	Invocations float64
	Errors      float64
}

// ErrorRate is the percentage of invocations that errored.
func (m *Metrics) ErrorRate() float64 {
	if m.Invocations == 0 {
		return 0
	}
	return m.Errors / m.Invocations * 100
}
