package services

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Settings struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	PublicBaseURL string
}

// S3Attachments stores membership files in an S3 compatible bucket.
type S3Attachments struct {
	client   *s3.Client
	settings S3Settings
}

func NewS3Attachments(ctx context.Context, settings S3Settings) (*S3Attachments, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKey,
			settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Attachments{client: client, settings: settings}, nil
}

func (s *S3Attachments) key(name string) string {
	prefix := strings.Trim(s.settings.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func (s *S3Attachments) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.settings.Bucket),
		Key:    aws.String(s.key(name)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return s.key(name), nil
}

func (s *S3Attachments) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.settings.Bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

func (s *S3Attachments) URL(ref string) string {
	base := strings.TrimRight(s.settings.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.settings.Endpoint, "/") + "/" + s.settings.Bucket
	}
	return base + "/" + ref
}
