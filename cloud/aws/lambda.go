package aws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const (
	DefaultWaitDuration = 60 * time.Second
	DefaultMaxRetry     = 5
	DefaultRetryDelay   = 5 * time.Second
)

// Lambda is the AWS Lambda operations
type Lambda struct {
	access            *IAM
	client            *lambda.Client
	description       string
	config            *config.Config
	retry             int
	retryDelay        time.Duration
	maxWaiterDuration time.Duration
}

// NewLambda instantiates a new AWS Lambda service
func NewLambda(cfg *config.Config, awsConfig aws.Config) *Lambda {
	if cfg.Lambda == nil {
		cfg.Lambda = &config.Lambda{}
	}
	cfg.Lambda.Defaults()

	return &Lambda{
		access:            NewIAM(cfg, awsConfig),
		client:            lambda.NewFromConfig(awsConfig),
		description:       "S3 HTML page",
		config:            cfg,
		retry:             DefaultMaxRetry,
		retryDelay:        DefaultRetryDelay,
		maxWaiterDuration: DefaultWaitDuration,
	}
}

// Deploy creates the function from the zip stored under codeKey in the
// page bucket, or updates its code and configuration when it already
// exists. It reports whether the function existed.
func (l *Lambda) Deploy(ctx context.Context, codeKey string) (bool, error) {
	deployed, err := l.isAlreadyDeployed(ctx)
	if err != nil {
		return false, err
	}

	if deployed {
		return true, l.update(ctx, codeKey)
	}

	if err := l.access.EnsureRole(ctx); err != nil {
		return false, err
	}

	if _, err := l.createLambdaFunction(ctx, codeKey); err != nil {
		return false, err
	}
	return false, l.waitTillFunctionBecomesActive(ctx)
}

func (l *Lambda) update(ctx context.Context, codeKey string) error {
	if _, err := l.updateLambdaFunction(ctx, codeKey); err != nil {
		return err
	}
	if err := l.waitTillFunctionBecomesUpdated(ctx); err != nil {
		return err
	}

	log.Debug("updating lambda function configuration...")
	_, err := l.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(l.config.Name),
		Environment:  &lambdaTypes.Environment{Variables: l.config.Env()},
		Timeout:      aws.Int32(int32(l.config.Lambda.Timeout)),
		MemorySize:   aws.Int32(int32(l.config.Lambda.Memory)),
	})
	if err != nil {
		return err
	}
	return l.waitTillFunctionBecomesUpdated(ctx)
}

func (l *Lambda) waitTillFunctionBecomesActive(ctx context.Context) error {
	if l.maxWaiterDuration == 0 {
		return nil
	}
	waiter := lambda.NewFunctionActiveV2Waiter(l.client)
	return waiter.Wait(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(l.config.Name),
	}, l.maxWaiterDuration)
}

func (l *Lambda) waitTillFunctionBecomesUpdated(ctx context.Context) error {
	if l.maxWaiterDuration == 0 {
		return nil
	}
	waiter := lambda.NewFunctionUpdatedV2Waiter(l.client)
	return waiter.Wait(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(l.config.Name),
	}, l.maxWaiterDuration)
}

// Undeploy deletes the function and its execution role
func (l *Lambda) Undeploy(ctx context.Context) error {
	deployed, err := l.isAlreadyDeployed(ctx)
	if err != nil {
		return err
	}
	if !deployed {
		msg := "can't find a deployed function. Run 's3html deploy' to deploy instead"
		return errors.New(msg)
	}

	log.Debug("deleting lambda function...")
	_, err = l.client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(l.config.Name),
	})
	if err != nil {
		return err
	}
	return l.access.DeleteRole(ctx)
}

// Invoke synchronously invokes the function with payload and decodes its
// ALB response
func (l *Lambda) Invoke(ctx context.Context, payload []byte) (*events.ALBTargetGroupResponse, error) {
	out, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.config.Name),
		InvocationType: lambdaTypes.InvocationTypeRequestResponse,
		LogType:        lambdaTypes.LogTypeTail,
		Payload:        payload,
	})
	if err != nil {
		return nil, err
	}

	if out.LogResult != nil {
		rawText, err := base64.StdEncoding.DecodeString(*out.LogResult)
		if err != nil {
			return nil, err
		}
		log.Debug(string(rawText))
	}

	if out.FunctionError != nil {
		return nil, fmt.Errorf("%s - encountered an error while invoking function: %s", *out.FunctionError, out.Payload)
	}

	response := &events.ALBTargetGroupResponse{}
	if err := json.Unmarshal(out.Payload, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (l *Lambda) isAlreadyDeployed(ctx context.Context) (bool, error) {
	_, err := l.getLambdaFunction(ctx, l.config.Name)
	if err != nil {
		var rnfErr *lambdaTypes.ResourceNotFoundException
		if errors.As(err, &rnfErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// createLambdaFunction creates the function. A freshly created role can
// take a few seconds before lambda is allowed to assume it, so creation is
// retried while lambda rejects the role.
func (l *Lambda) createLambdaFunction(ctx context.Context, codeKey string) (*string, error) {
	input := &lambda.CreateFunctionInput{
		Code: &lambdaTypes.FunctionCode{
			S3Bucket: aws.String(l.config.Bucket),
			S3Key:    aws.String(codeKey),
		},
		FunctionName:  aws.String(l.config.Name),
		Description:   aws.String(l.description),
		Role:          aws.String(l.config.Lambda.Role),
		Runtime:       lambdaTypes.Runtime(l.config.Lambda.Runtime),
		Handler:       aws.String(l.config.Lambda.Handler),
		Timeout:       aws.Int32(int32(l.config.Lambda.Timeout)),
		MemorySize:    aws.Int32(int32(l.config.Lambda.Memory)),
		Architectures: []lambdaTypes.Architecture{lambdaTypes.Architecture(l.config.Lambda.Architecture)},
		Environment:   &lambdaTypes.Environment{Variables: l.config.Env()},
	}

	for attempt := 0; ; attempt++ {
		log.Debug("creating lambda function...", "attempt", attempt+1)
		resp, err := l.client.CreateFunction(ctx, input)
		if err == nil {
			return resp.FunctionArn, nil
		}

		var ipvErr *lambdaTypes.InvalidParameterValueException
		if !errors.As(err, &ipvErr) || attempt+1 >= l.retry {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Lambda) getLambdaFunction(ctx context.Context, name string) (*lambda.GetFunctionOutput, error) {
	log.Debug(fmt.Sprintf("getting lambda function %s...", name))
	return l.client.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
}

func (l *Lambda) updateLambdaFunction(ctx context.Context, codeKey string) (*string, error) {
	log.Debug("updating lambda function code...")
	resp, err := l.client.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(l.config.Name),
		S3Bucket:     aws.String(l.config.Bucket),
		S3Key:        aws.String(codeKey),
	})
	if err != nil {
		return nil, err
	}
	return resp.FunctionArn, nil
}
