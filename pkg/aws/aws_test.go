package aws

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sns.PublishOutput{}, f.err
}

func TestSNSClient_PublishSetsEventTypeAttribute(t *testing.T) {
	api := &fakeSNS{}
	client := &SNSClient{client: api}

	err := client.Publish(context.Background(), "arn:aws:sns:ap-northeast-2:000000000000:orders", "order.completed", []byte(`{"order_id":"ORD-1"}`))

	require.NoError(t, err)
	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, `{"order_id":"ORD-1"}`, sdkaws.ToString(in.Message))
	assert.Equal(t, "order.completed", sdkaws.ToString(in.MessageAttributes["event_type"].StringValue))
}

func TestSNSClient_Errors(t *testing.T) {
	client := &SNSClient{client: &fakeSNS{err: errors.New("throttled")}}

	assert.EqualError(t, client.Publish(context.Background(), "", "order.completed", nil), "empty topicArn")
	assert.ErrorContains(t, client.Publish(context.Background(), "arn:topic", "order.completed", nil), "throttled")
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient_RecordCount(t *testing.T) {
	api := &fakeCloudWatch{}
	m := newMetricsClient(api, "", true)

	err := m.RecordCount(context.Background(), MetricOrdersCompleted, map[string]string{"Service": "storefront", "Channel": "web"})

	require.NoError(t, err)
	require.Len(t, api.inputs, 1)
	assert.Equal(t, "Storefront", sdkaws.ToString(api.inputs[0].Namespace))
	datum := api.inputs[0].MetricData[0]
	assert.Equal(t, MetricOrdersCompleted, sdkaws.ToString(datum.MetricName))
	assert.Equal(t, 1.0, sdkaws.ToFloat64(datum.Value))
	require.Len(t, datum.Dimensions, 2)
	assert.Equal(t, "Channel", sdkaws.ToString(datum.Dimensions[0].Name))
	assert.Equal(t, "Service", sdkaws.ToString(datum.Dimensions[1].Name))
}

func TestMetricsClient_DisabledAndNil(t *testing.T) {
	api := &fakeCloudWatch{}
	m := newMetricsClient(api, "ns", false)
	require.NoError(t, m.RecordLatency(context.Background(), MetricHTTPLatency, time.Second, nil))
	assert.Empty(t, api.inputs)

	var nilClient *MetricsClient
	assert.False(t, nilClient.IsEnabled())
	assert.NoError(t, nilClient.RecordCount(context.Background(), MetricHTTPRequests, nil))
}

type fakeLogs struct {
	mu      sync.Mutex
	batches [][]string
	groups  int
	streams int
}

func (f *fakeLogs) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	f.groups++
	return &cloudwatchlogs.CreateLogGroupOutput{}, nil
}

func (f *fakeLogs) PutRetentionPolicy(context.Context, *cloudwatchlogs.PutRetentionPolicyInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error) {
	return &cloudwatchlogs.PutRetentionPolicyOutput{}, nil
}

func (f *fakeLogs) CreateLogStream(context.Context, *cloudwatchlogs.CreateLogStreamInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	f.streams++
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func (f *fakeLogs) PutLogEvents(_ context.Context, params *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]string, 0, len(params.LogEvents))
	for _, e := range params.LogEvents {
		batch = append(batch, sdkaws.ToString(e.Message))
	}
	f.batches = append(f.batches, batch)
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func TestCloudWatchLogsWriter_BuffersUntilSync(t *testing.T) {
	api := &fakeLogs{}
	w := newCloudWatchLogsWriter(api, "", "storefront")

	_, err := w.Write([]byte("line one"))
	require.NoError(t, err)
	_, err = w.Write([]byte("line two"))
	require.NoError(t, err)
	assert.Empty(t, api.batches)

	require.NoError(t, w.Sync())
	require.Len(t, api.batches, 1)
	assert.Equal(t, []string{"line one", "line two"}, api.batches[0])

	require.NoError(t, w.Sync())
	assert.Len(t, api.batches, 1)
}

func TestCloudWatchLogsWriter_FlushesFullBatch(t *testing.T) {
	api := &fakeLogs{}
	w := newCloudWatchLogsWriter(api, "/custom", "storefront")

	for i := 0; i < logBatchSize; i++ {
		_, _ = w.Write([]byte("x"))
	}

	require.Len(t, api.batches, 1)
	assert.Len(t, api.batches[0], logBatchSize)
}

func TestCloudWatchLogsWriter_SetupAndClose(t *testing.T) {
	api := &fakeLogs{}
	w := newCloudWatchLogsWriter(api, "", "storefront")
	require.NoError(t, w.ensureLogGroup(context.Background()))
	require.NoError(t, w.createLogStream(context.Background()))
	assert.Equal(t, 1, api.groups)
	assert.Equal(t, 1, api.streams)

	go w.loop(time.Hour)
	_, _ = w.Write([]byte("last"))
	require.NoError(t, w.Close())

	require.Len(t, api.batches, 1)
	assert.Equal(t, []string{"last"}, api.batches[0])
}
