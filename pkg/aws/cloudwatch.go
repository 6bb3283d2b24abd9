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

const (
	logBatchSize     = 25
	logFlushInterval = 5 * time.Second
	logRetentionDays = 14
)

type cloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsWriter buffers log lines and ships them to one log stream.
// It satisfies zapcore.WriteSyncer; Sync flushes the buffer. A full batch is
// flushed on write and a background loop flushes whatever is pending.
type CloudWatchLogsWriter struct {
	client        cloudWatchLogsAPI
	logGroupName  string
	logStreamName string

	mu      sync.Mutex
	pending []types.InputLogEvent
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewCloudWatchLogsWriter ensures the log group exists, opens a stream named
// after serviceName and starts the flush loop.
func NewCloudWatchLogsWriter(ctx context.Context, cfg sdkaws.Config, logGroupName, serviceName string) (*CloudWatchLogsWriter, error) {
	w := newCloudWatchLogsWriter(cloudwatchlogs.NewFromConfig(cfg), logGroupName, serviceName)
	if err := w.ensureLogGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	if err := w.createLogStream(ctx); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	go w.loop(logFlushInterval)
	return w, nil
}

func newCloudWatchLogsWriter(api cloudWatchLogsAPI, logGroupName, serviceName string) *CloudWatchLogsWriter {
	if logGroupName == "" {
		logGroupName = "/storefront/services"
	}
	return &CloudWatchLogsWriter{
		client:        api,
		logGroupName:  logGroupName,
		logStreamName: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
		now:           time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (w *CloudWatchLogsWriter) ensureLogGroup(ctx context.Context) error {
	_, err := w.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(w.logGroupName),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if !errors.As(err, &exists) {
			return err
		}
	}

	_, err = w.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(w.logGroupName),
		RetentionInDays: sdkaws.Int32(logRetentionDays),
	})
	if err != nil {
		return fmt.Errorf("failed to set retention policy: %w", err)
	}
	return nil
}

func (w *CloudWatchLogsWriter) createLogStream(ctx context.Context) error {
	_, err := w.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(w.logGroupName),
		LogStreamName: sdkaws.String(w.logStreamName),
	})
	return err
}

// Write queues one log line. It never fails; shipping errors go to stderr.
func (w *CloudWatchLogsWriter) Write(p []byte) (int, error) {
	event := types.InputLogEvent{
		Message:   sdkaws.String(string(p)),
		Timestamp: sdkaws.Int64(w.now().UnixMilli()),
	}

	w.mu.Lock()
	w.pending = append(w.pending, event)
	full := len(w.pending) >= logBatchSize
	w.mu.Unlock()

	if full {
		w.flush(context.Background())
	}
	return len(p), nil
}

func (w *CloudWatchLogsWriter) Sync() error {
	return w.flush(context.Background())
}

func (w *CloudWatchLogsWriter) flush(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	_, err := w.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(w.logGroupName),
		LogStreamName: sdkaws.String(w.logStreamName),
		LogEvents:     batch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		return fmt.Errorf("failed to put log events: %w", err)
	}
	return nil
}

func (w *CloudWatchLogsWriter) loop(interval time.Duration) {
	defer close(w.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.flush(context.Background())
		case <-w.stop:
			return
		}
	}
}

// Close stops the flush loop and ships what is left.
func (w *CloudWatchLogsWriter) Close() error {
	close(w.stop)
	<-w.done
	return w.flush(context.Background())
}
