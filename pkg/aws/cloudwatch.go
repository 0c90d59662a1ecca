package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchLogsClient ships log lines to one CloudWatch log stream. It
// implements zapcore.WriteSyncer so it can be tee'd next to stdout.
type CloudWatchLogsClient struct {
	client        *cloudwatchlogs.Client
	logGroupName  string
	logStreamName string

	mu            sync.Mutex
	sequenceToken *string
}

// NewCloudWatchLogsClient creates the log group (if missing) and a fresh stream
// named after the service and start time.
func NewCloudWatchLogsClient(ctx context.Context, cfg sdkaws.Config, logGroup, serviceName string) (*CloudWatchLogsClient, error) {
	if logGroup == "" {
		logGroup = "/storefront/services"
	}

	c := &CloudWatchLogsClient{
		client:        cloudwatchlogs.NewFromConfig(cfg),
		logGroupName:  logGroup,
		logStreamName: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	}

	if err := c.ensureLogGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	if _, err := c.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(c.logGroupName),
		LogStreamName: sdkaws.String(c.logStreamName),
	}); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}

	return c, nil
}

func (c *CloudWatchLogsClient) ensureLogGroup(ctx context.Context) error {
	_, err := c.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(c.logGroupName),
	})
	if err != nil {
		var existsErr *types.ResourceAlreadyExistsException
		if !errors.As(err, &existsErr) {
			return err
		}
	}

	_, err = c.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(c.logGroupName),
		RetentionInDays: sdkaws.Int32(30),
	})
	return err
}

// Write sends one log line. Failures go to stderr and never fail the caller.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	event := types.InputLogEvent{
		Message:   sdkaws.String(string(p)),
		Timestamp: sdkaws.Int64(time.Now().UnixMilli()),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	out, err := c.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(c.logGroupName),
		LogStreamName: sdkaws.String(c.logStreamName),
		LogEvents:     []types.InputLogEvent{event},
		SequenceToken: c.sequenceToken,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch write error: %v\n", err)
		return len(p), nil
	}
	c.sequenceToken = out.NextSequenceToken
	return len(p), nil
}

func (c *CloudWatchLogsClient) Sync() error { return nil }
