package aws

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go/middleware"

	"github.com/spatocode/s3html/config"
)

type mockResult struct {
	result any
	err    error
}

// mockAPI answers SDK operations by name from a finalize middleware and
// records the input of every call.
type mockAPI struct {
	mu     sync.Mutex
	ops    map[string]mockResult
	calls  []string
	inputs map[string]any
}

func newMockAPI(ops map[string]mockResult) *mockAPI {
	return &mockAPI{ops: ops, inputs: map[string]any{}}
}

func (m *mockAPI) called(op string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (m *mockAPI) input(op string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[op]
}

func (m *mockAPI) apiOptions(s *middleware.Stack) error {
	err := s.Initialize.Add(
		middleware.InitializeMiddlewareFunc(
			"CaptureInputMock",
			func(ctx context.Context, in middleware.InitializeInput, next middleware.InitializeHandler) (middleware.InitializeOutput, middleware.Metadata, error) {
				m.mu.Lock()
				m.inputs[awsmiddleware.GetOperationName(ctx)] = in.Parameters
				m.mu.Unlock()
				return next.HandleInitialize(ctx, in)
			},
		),
		middleware.After,
	)
	if err != nil {
		return err
	}

	return s.Finalize.Add(
		middleware.FinalizeMiddlewareFunc(
			"OperationMock",
			func(ctx context.Context, fi middleware.FinalizeInput, fh middleware.FinalizeHandler) (middleware.FinalizeOutput, middleware.Metadata, error) {
				op := awsmiddleware.GetOperationName(ctx)
				m.mu.Lock()
				m.calls = append(m.calls, op)
				r, ok := m.ops[op]
				m.mu.Unlock()
				if !ok {
					return middleware.FinalizeOutput{}, middleware.Metadata{}, fmt.Errorf("unexpected operation %s", op)
				}
				return middleware.FinalizeOutput{
					Result: r.result,
				}, middleware.Metadata{}, r.err
			},
		),
		middleware.Before,
	)
}

func (m *mockAPI) awsConfig(t *testing.T) aws.Config {
	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.TODO(),
		awsConfig.WithRegion("us-west-1"),
		awsConfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
		awsConfig.WithAPIOptions([]func(*middleware.Stack) error{m.apiOptions}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return awsCfg
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Name:   "landing-page",
		Bucket: "pages",
		Region: "us-west-1",
		Key:    config.PageKey,
		Lambda: &config.Lambda{},
	}
	cfg.Lambda.Defaults()
	return cfg
}
