package meter_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/quota"
)

// pagedClient serves sizes in pages of pageSize objects.
type pagedClient struct {
	mu       sync.Mutex
	sizes    []int64
	pageSize int
	err      error
	prefixes []string
}

func (c *pagedClient) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	c.mu.Lock()
	c.prefixes = append(c.prefixes, aws.ToString(in.Prefix))
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	end := min(start+c.pageSize, len(c.sizes))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(c.sizes))}
	for i := start; i < end; i++ {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(strconv.Itoa(i)),
			Size: aws.Int64(c.sizes[i]),
		})
	}
	if end < len(c.sizes) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func newMeter(t *testing.T, client meter.S3Client, prefix string) *meter.S3Meter {
	t.Helper()

	m, err := meter.NewS3Meter(context.Background(), meter.S3Config{
		Bucket: "media",
		Region: "eu-central-1",
		Prefix: prefix,
	}, meter.WithS3Client(client))
	require.NoError(t, err)
	return m
}

func TestS3Meter(t *testing.T) {
	t.Parallel()

	t.Run("sums all pages and rounds up to MB", func(t *testing.T) {
		t.Parallel()

		const mb = 1 << 20
		client := &pagedClient{sizes: []int64{mb, mb, mb / 2, 10, 0}, pageSize: 2}
		m := newMeter(t, client, "/uploads/")

		b, err := m.Bytes(context.Background(), "org-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2*mb+mb/2+10), b)

		v, err := m.Measure(context.Background(), "org-1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)

		assert.Equal(t, "uploads/org-1/", client.prefixes[0])
	})

	t.Run("empty prefix", func(t *testing.T) {
		t.Parallel()

		client := &pagedClient{pageSize: 10}
		m := newMeter(t, client, "")

		v, err := m.Measure(context.Background(), "org-2")
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.Equal(t, []string{"org-2/"}, client.prefixes)
	})

	t.Run("list error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("access denied")
		m := newMeter(t, &pagedClient{err: boom, pageSize: 1}, "media")

		_, err := m.Measure(context.Background(), "org-1")
		assert.ErrorIs(t, err, meter.ErrMeasureFailed)
		assert.ErrorIs(t, err, boom)

		_, err = m.Measure(context.Background(), "")
		assert.ErrorIs(t, err, meter.ErrMeasureFailed)
	})

	t.Run("registers media storage", func(t *testing.T) {
		t.Parallel()

		m := newMeter(t, &pagedClient{sizes: []int64{1}, pageSize: 1}, "media")
		r := meter.NewRegistry()
		m.Register(r)

		v, err := r[quota.ResourceMediaStorage](context.Background(), "org-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})
}

func TestNewS3Meter_Validation(t *testing.T) {
	t.Parallel()

	_, err := meter.NewS3Meter(context.Background(), meter.S3Config{Bucket: "media"})
	assert.ErrorIs(t, err, meter.ErrMissingS3Config)

	assert.False(t, meter.S3Config{}.Enabled())
	assert.True(t, meter.S3Config{Bucket: "b"}.Enabled())
}
