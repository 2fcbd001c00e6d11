package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

// S3Config points the uploader at a bucket. Endpoint is set for
// S3-compatible stores such as MinIO; static keys are optional and fall back
// to the default AWS credential chain.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Uploader writes files under <prefix>/<uuid>-<name>.
type S3Uploader struct {
	uploader objectUploader
	bucket   string
	prefix   string
}

var _ Uploader = (*S3Uploader)(nil)

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 upload: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return newS3Uploader(uploader, cfg.Bucket, cfg.KeyPrefix), nil
}

func newS3Uploader(u objectUploader, bucket, prefix string) *S3Uploader {
	return &S3Uploader{uploader: u, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Upload ignores token; access to the bucket is governed by AWS credentials.
func (s *S3Uploader) Upload(ctx context.Context, _ string, file models.UploadFile) (*models.UploadedFile, error) {
	name := filepath.Base(file.Name)
	if file.Name == "" || name == "." || name == "/" {
		return nil, ErrEmptyFile
	}

	key := uuid.NewString() + "-" + name
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	counter := &countingReader{r: file.Body}
	ct := contentType(file)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: aws.String(ct),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", key, err)
	}

	size := file.Size
	if size == 0 {
		size = counter.n
	}
	return &models.UploadedFile{Filename: key, Filesize: size, MediaType: ct}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
