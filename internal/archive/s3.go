package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Options S3 兼容存储配置（R2 / MinIO / AWS）
type Options struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	Prefix        string
}

// Enabled 是否配置了归档
func (o Options) Enabled() bool {
	return o.Bucket != "" && o.AccessKey != "" && o.SecretKey != ""
}

// S3Archive 上传文件归档
type S3Archive struct {
	client  *s3.Client
	bucket  string
	baseURL string
	prefix  string
}

// NewS3Archive 创建归档客户端
func NewS3Archive(ctx context.Context, opts Options) (*S3Archive, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" && opts.Endpoint != "" {
		baseURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	}

	return &S3Archive{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL,
		prefix:  strings.Trim(opts.Prefix, "/"),
	}, nil
}

// Put 上传对象，返回可访问地址
func (a *S3Archive) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if a.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", a.baseURL, key), nil
}
