package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/memgraph/mgconsole/internal/source"
)

// openSource dispatches spec on scheme: "-" for stdin, s3://, minio://,
// watch://, or a bare path treated as a single file.
func openSource(ctx context.Context, spec string) (source.StatementSource, error) {
	if spec == "" || spec == "-" {
		return source.NewStdin(os.Stdin), nil
	}

	switch {
	case strings.HasPrefix(spec, "s3://"):
		return openS3Source(ctx, spec)
	case strings.HasPrefix(spec, "minio://"):
		return openMinIOSource(ctx, spec)
	case strings.HasPrefix(spec, "watch://"):
		return source.NewWatch(ctx, strings.TrimPrefix(spec, "watch://"))
	default:
		f, err := os.Open(spec)
		if err != nil {
			return nil, fmt.Errorf("opening source %s: %w", spec, err)
		}
		return source.NewStdin(f), nil
	}
}

// openS3Source parses s3://bucket/prefix and dials the AWS SDK's default
// credential chain, honoring AWS_REGION / AWS_ENDPOINT_URL like any other
// AWS CLI-compatible tool.
func openS3Source(ctx context.Context, spec string) (source.StatementSource, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing source %s: %w", spec, err)
	}
	bucket := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		}
	})
	return source.NewS3(ctx, client, bucket, prefix)
}

// openMinIOSource parses minio://bucket/prefix... — every object under the
// prefix, listed once up front via the AWS-compatible list API exposed
// through MINIO_ENDPOINT/MINIO_ACCESS_KEY/MINIO_SECRET_KEY.
func openMinIOSource(ctx context.Context, spec string) (source.StatementSource, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing source %s: %w", spec, err)
	}
	bucket := u.Host
	prefix := strings.TrimPrefix(u.Path, "/")

	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("source %s: MINIO_ENDPOINT is not set", spec)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	var names []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing minio://%s/%s: %w", bucket, prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, obj.Key)
	}
	return source.NewMinIO(ctx, client, bucket, names), nil
}
