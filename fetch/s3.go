package fetch

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/urlordjames/green-lib/errors"
)

const defaultRegion = "us-east-1"

// s3API is the subset of the S3 client used by S3Source.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Option configures an S3Source.
type S3Option func(*S3Source)

// WithS3Client sets the client used for requests. When unset, a client is
// built from the default AWS credential chain on first use.
func WithS3Client(client s3API) S3Option {
	return func(s *S3Source) {
		s.client = client
	}
}

// WithRegion sets the AWS region. If not specified, the region from the
// default configuration is used, falling back to us-east-1.
func WithRegion(region string) S3Option {
	return func(s *S3Source) {
		s.region = region
	}
}

// S3Source fetches s3://bucket/key URLs.
type S3Source struct {
	region string

	once    sync.Once
	client  s3API
	initErr error
}

// NewS3Source creates an S3Source. No AWS configuration is loaded until the
// first Fetch, so a Router can carry an S3Source without credentials.
func NewS3Source(opts ...S3Option) *S3Source {
	s := &S3Source{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3Source) init(ctx context.Context) error {
	s.once.Do(func() {
		if s.client != nil {
			return
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			s.initErr = errors.Wrap(err, errors.CodeInvalidConfig, "load aws configuration")
			return
		}
		if s.region != "" {
			cfg.Region = s.region
		} else if cfg.Region == "" {
			cfg.Region = defaultRegion
		}
		s.client = s3.NewFromConfig(cfg)
	})
	return s.initErr
}

// Fetch implements Source. Errors returned by the S3 service itself are
// reported as errors.CodeProtocol; failures to reach it as errors.CodeNetwork.
func (s *S3Source) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.init(ctx); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(ctx, err, rawURL)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeProtocol, "read object body",
			map[string]interface{}{"url": rawURL})
	}
	return body, nil
}

func classifyS3Error(ctx context.Context, err error, rawURL string) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeCanceled, "request aborted")
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		return errors.WrapWithContext(err, errors.CodeProtocol, "s3 request rejected",
			map[string]interface{}{"url": rawURL, "aws_code": apiErr.ErrorCode()})
	}
	return errors.WrapWithContext(err, errors.CodeNetwork, "s3 request failed",
		map[string]interface{}{"url": rawURL})
}

func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid s3 url",
			map[string]interface{}{"url": rawURL})
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return "", "", errors.WrapWithContext(nil, errors.CodeInvalidInput, "s3 url must be s3://bucket/key",
			map[string]interface{}{"url": rawURL})
	}
	return bucket, key, nil
}
