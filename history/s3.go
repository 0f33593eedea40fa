package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/SHINOYP/KYC/iox"
	"github.com/SHINOYP/KYC/types"
)

// S3Config holds configuration for the S3 history backend.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not subdomain).
	// Required by most S3-compatible providers (R2, MinIO, etc.).
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "bucket/prefix" or "bucket".
func ParseS3Path(path string) (bucket, prefix string) {
	parts := strings.SplitN(path, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix
}

// s3API is the subset of the S3 client the store uses, extracted so
// tests can stub it.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps attempt reports as day-partitioned JSON objects.
type S3Store struct {
	client s3API
	config S3Config
}

// NewS3Store creates an S3-backed history store.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM role).
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Load AWS config with optional region
	ctx := context.Background()
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional endpoint and path-style overrides
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsConfig, s3Opts...),
		config: cfg,
	}, nil
}

// reportKey builds a day-partitioned object key whose lexical order
// matches chronological order.
func (s *S3Store) reportKey(report *types.Report) string {
	day := report.StartedAt.UTC().Format("2006-01-02")
	key := fmt.Sprintf("day=%s/%020d-%s.json", day, report.StartedAt.UTC().UnixNano(), report.SessionID)
	if s.config.Prefix != "" {
		return strings.TrimSuffix(s.config.Prefix, "/") + "/" + key
	}
	return key
}

// Append writes the report as one JSON object.
func (s *S3Store) Append(ctx context.Context, report *types.Report) error {
	if report == nil {
		return errInvalidReport
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("history: marshal report: %w", err)
	}

	key := s.reportKey(report)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return wrapStorageError(err, "append", key)
}

// List fetches up to limit reports, most recent first. Keys sort
// chronologically, so only the newest limit objects are fetched.
func (s *S3Store) List(ctx context.Context, limit int) ([]*types.Report, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.config.Bucket),
			Prefix:            aws.String(s.config.Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, wrapStorageError(err, "list", s.config.Bucket)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	reports := make([]*types.Report, 0, len(keys))
	for _, key := range keys {
		report, err := s.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *S3Store) fetch(ctx context.Context, key string) (*types.Report, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapStorageError(err, "read", key)
	}
	defer iox.DiscardClose(out.Body)

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrapStorageError(err, "read", key)
	}

	var report types.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("history: decode %s: %w", key, err)
	}
	return &report, nil
}

// Close releases store resources. The S3 client holds no connections
// that need explicit teardown.
func (s *S3Store) Close() error { return nil }

var _ Store = (*S3Store)(nil)
