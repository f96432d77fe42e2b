package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go-contractor/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink receives finished export files and returns where each one landed.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type FileSink struct {
	Dir string
}

func (s *FileSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Sink struct {
	Uploader uploader
	Bucket   string
	Prefix   string
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(s.Prefix, name)
	_, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload s3://%s/%s: %w", s.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.Bucket, key), nil
}

// NewSink builds the sink named by EXPORT_SINK.
func NewSink(cfg *config.Config) (Sink, error) {
	if cfg.ExportSink != "s3" {
		return &FileSink{Dir: cfg.FSPath}, nil
	}
	if cfg.S3Bucket == "" {
		return nil, errors.New("EXPORT_SINK=s3 requires S3_BUCKET")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Sink{
		Uploader: manager.NewUploader(client),
		Bucket:   cfg.S3Bucket,
		Prefix:   cfg.S3Prefix,
	}, nil
}
