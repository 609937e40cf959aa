package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwlTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"golang.org/x/sync/errgroup"

	"github.com/spatocode/s3html"
	"github.com/spatocode/s3html/config"
	"github.com/spatocode/s3html/internal/log"
)

const (
	InvocationMetric = "Invocations"
	ErrorMetric      = "Errors"

	metricWindow = 24 * time.Hour
	pollInterval = time.Second
)

// CloudWatch is the AWS Cloudwatch operations
type CloudWatch struct {
	config *config.Config
	log    *cloudwatchlogs.Client
	client *cloudwatch.Client
}

// NewCloudWatch creates a new AWS Cloudwatch
func NewCloudWatch(config *config.Config, awsConfig aws.Config) *CloudWatch {
	return &CloudWatch{
		config: config,
		log:    cloudwatchlogs.NewFromConfig(awsConfig),
		client: cloudwatch.NewFromConfig(awsConfig),
	}
}

// LogGroup is the log group lambda writes the function logs to
func LogGroup(function string) string {
	return fmt.Sprintf("/aws/lambda/%s", function)
}

// Watch polls the function logs until ctx is cancelled
func (c *CloudWatch) Watch(ctx context.Context) error {
	var since time.Time
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		last, err := c.Logs(ctx, since)
		if err != nil {
			return err
		}
		since = last

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Logs prints the function log events newer than since and returns the
// timestamp of the last event seen.
func (c *CloudWatch) Logs(ctx context.Context, since time.Time) (time.Time, error) {
	events, err := c.getLogs(ctx, since)
	if err != nil {
		return since, err
	}
	for _, line := range formatLogs(events) {
		log.PrintfInfo("%s\n", line)
	}
	if len(events) > 0 {
		since = time.UnixMilli(aws.ToInt64(events[len(events)-1].Timestamp))
	}
	return since, nil
}

// formatLogs renders log events, skipping the lambda runtime's
// START/END/REPORT bookkeeping lines.
func formatLogs(events []cwlTypes.FilteredLogEvent) []string {
	var lines []string
	for _, e := range events {
		message := aws.ToString(e.Message)
		if strings.Contains(message, "START RequestId") ||
			strings.Contains(message, "REPORT RequestId") ||
			strings.Contains(message, "END RequestId") {
			continue
		}
		ts := time.UnixMilli(aws.ToInt64(e.Timestamp)).UTC()
		lines = append(lines, fmt.Sprintf("[%s] %s", ts.Format(time.RFC3339), strings.TrimSpace(message)))
	}
	return lines
}

// getLogs pages through the log group events newer than since
func (c *CloudWatch) getLogs(ctx context.Context, since time.Time) ([]cwlTypes.FilteredLogEvent, error) {
	var (
		response  *cloudwatchlogs.FilterLogEventsOutput
		logEvents []cwlTypes.FilteredLogEvent
		err       error
	)

	name := LogGroup(c.config.Name)
	startTime := since.UnixMilli() + 1
	if since.IsZero() {
		startTime = 0
	}
	for response == nil || response.NextToken != nil {
		response, err = c.filterLogEvents(ctx, name, startTime, response)
		if err != nil {
			var rnfErr *cwlTypes.ResourceNotFoundException
			if errors.As(err, &rnfErr) {
				log.Debug(fmt.Sprintf("log group %s not found", name))
				return nil, nil
			}
			return nil, err
		}
		logEvents = append(logEvents, response.Events...)
	}
	sort.SliceStable(logEvents, func(i int, j int) bool {
		return aws.ToInt64(logEvents[i].Timestamp) < aws.ToInt64(logEvents[j].Timestamp)
	})
	return logEvents, nil
}

// filterLogEvents fetches one page of log events
func (c *CloudWatch) filterLogEvents(ctx context.Context, logName string, startTime int64, prev *cloudwatchlogs.FilterLogEventsOutput) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(logName),
		StartTime:    aws.Int64(startTime),
		EndTime:      aws.Int64(time.Now().UnixMilli()),
		Limit:        aws.Int32(10000),
	}
	if prev != nil && prev.NextToken != nil {
		input.NextToken = prev.NextToken
	}
	return c.log.FilterLogEvents(ctx, input)
}

// Clear deletes the function log group
func (c *CloudWatch) Clear(ctx context.Context) error {
	_, err := c.log.DeleteLogGroup(ctx, &cloudwatchlogs.DeleteLogGroupInput{
		LogGroupName: aws.String(LogGroup(c.config.Name)),
	})
	var rnfErr *cwlTypes.ResourceNotFoundException
	if err != nil && !errors.As(err, &rnfErr) {
		return err
	}
	return nil
}

// Metrics sums the function invocations and errors of the last day
func (c *CloudWatch) Metrics(ctx context.Context) (*s3html.Metrics, error) {
	metrics := &s3html.Metrics{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := c.getMetricSum(ctx, InvocationMetric)
		metrics.Invocations = sum
		return err
	})
	g.Go(func() error {
		sum, err := c.getMetricSum(ctx, ErrorMetric)
		metrics.Errors = sum
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (c *CloudWatch) getMetricSum(ctx context.Context, name string) (float64, error) {
	end := time.Now().UTC()
	stats, err := c.client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/Lambda"),
		MetricName: aws.String(name),
		StartTime:  aws.Time(end.Add(-metricWindow)),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(metricWindow.Seconds())),
		Statistics: []cwTypes.Statistic{cwTypes.StatisticSum},
		Dimensions: []cwTypes.Dimension{
			{
				Name:  aws.String("FunctionName"),
				Value: aws.String(c.config.Name),
			},
		},
	})
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, dp := range stats.Datapoints {
		sum += aws.ToFloat64(dp.Sum)
	}
	return sum, nil
}
