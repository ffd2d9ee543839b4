package meter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/teamarena/quotakit/pkg/quota"
)

const bytesPerMB = 1 << 20

// S3Client is the subset of the S3 API the storage meter needs.
// *s3.Client satisfies it.
type S3Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config locates organization media in a bucket.
type S3Config struct {
	Bucket         string `env:"QUOTA_S3_BUCKET"`
	Region         string `env:"QUOTA_S3_REGION"`
	AccessKeyID    string `env:"QUOTA_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"QUOTA_S3_SECRET_KEY"`
	Endpoint       string `env:"QUOTA_S3_ENDPOINT"`          // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"QUOTA_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
	Prefix         string `env:"QUOTA_S3_PREFIX" envDefault:"media"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Option configures S3Meter.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3.Options)
}

// WithS3Client sets a pre-configured client. Useful for tests.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// S3Meter measures media storage as the total size of the objects stored under
// "<prefix>/<organization>/". It is safe for concurrent use.
type S3Meter struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3Meter creates a storage meter for cfg.Bucket.
func NewS3Meter(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Meter, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrMissingS3Config
	}

	o := &s3Options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}
		awsOptions = append(awsOptions, o.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrLoadAWSConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	return &S3Meter{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (m *S3Meter) orgPrefix(organizationID string) string {
	if m.prefix == "" {
		return organizationID + "/"
	}
	return fmt.Sprintf("%s/%s/", m.prefix, organizationID)
}

// Bytes returns the total object size under the organization prefix.
func (m *S3Meter) Bytes(ctx context.Context, organizationID string) (int64, error) {
	if organizationID == "" {
		return 0, errors.Join(ErrMeasureFailed, errors.New("organization id is required"))
	}

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(m.orgPrefix(organizationID)),
	})

	var total int64
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errors.Join(ErrMeasureFailed, err)
		}
		for _, obj := range page.Contents {
			total += aws.ToInt64(obj.Size)
		}
	}
	return total, nil
}

// Measure returns media storage in MB, rounding any partial megabyte up.
func (m *S3Meter) Measure(ctx context.Context, organizationID string) (int64, error) {
	b, err := m.Bytes(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	return (b + bytesPerMB - 1) / bytesPerMB, nil
}

// Register adds the meter to r for quota.ResourceMediaStorage.
func (m *S3Meter) Register(r Registry) {
	r.Register(quota.ResourceMediaStorage, m.Measure)
}
