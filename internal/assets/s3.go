package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint is set for S3-compatible hosts such as MinIO; path-style addressing is used then.
	Endpoint string
	BaseURL  string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, o), nil
}

func NewS3StoreWithClient(client putObjectAPI, o S3Options) *S3Store {
	base := o.BaseURL
	if base == "" {
		if o.Endpoint != "" {
			base = joinURL(o.Endpoint, o.Bucket)
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", o.Bucket, o.Region)
		}
	}
	return &S3Store{client: client, bucket: o.Bucket, baseURL: base}
}

func (s *S3Store) Upload(ctx context.Context, localPath string) (*UploadResult, error) {
	p, err := readPayload(localPath)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(p.key),
		Body:          bytes.NewReader(p.data),
		ContentType:   aws.String(p.contentType),
		ContentLength: aws.Int64(int64(len(p.data))),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return p.result(joinURL(s.baseURL, p.key)), nil
}
