package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the bucket images are written to
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional, for S3 compatible stores
	AccessKey string
	SecretKey string
}

// objectAPI is the subset of the S3 client the writer uses
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Writer keeps images as objects under "<folder>/<name>"
type S3Writer struct {
	bucket string
	client objectAPI
}

// NewS3Writer builds an S3 client from static credentials, or the default chain when
// no access key is given
func NewS3Writer(ctx context.Context, cfg S3Config) (*S3Writer, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Writer{bucket: cfg.Bucket, client: client}, nil
}

func (w *S3Writer) UploadImage(ctx context.Context, folder, originalName string, r io.Reader) (string, error) {
	contentType, content, ext, err := sniff(r, originalName)
	if err != nil {
		return "", err
	}
	// Buffered so the SDK gets a seekable body for payload signing
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	name := newName(ext)
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(path.Join(folder, name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put image: %w", err)
	}
	return name, nil
}

func (w *S3Writer) DeleteImage(ctx context.Context, folder, name string) error {
	_, err := w.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(path.Join(folder, path.Base(name))),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
