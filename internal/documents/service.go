// Package documents stores deed documents in S3-compatible object storage.
// The sha256 of the uploaded content becomes the on-chain document hash, so
// anyone holding the document can recompute and verify it.
package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mkurbatov/landledger/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Config points the service at an S3-compatible endpoint (MinIO in the
// default deployment).
type Config struct {
	BaseEndpoint string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
}

// Service uploads deed documents and issues short-lived download links.
type Service struct {
	config Config
}

func NewService(config Config) *Service {
	return &Service{config: config}
}

// RandomStorageKey builds a date-partitioned object key for a new document.
func RandomStorageKey() (string, error) {
	suffix, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}
	d := time.Now()
	return fmt.Sprintf("documents/%d/%d/%d/%s", d.Year(), d.Month(), d.Day(), suffix), nil
}

func (s *Service) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.AccessKey,
			s.config.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload stores the document under a fresh storage key and returns the key
// together with the hex sha256 of the content.
func (s *Service) Upload(ctx context.Context, r io.Reader) (string, string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", "", fmt.Errorf("build s3 client: %w", err)
	}

	h := sha256.New()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.TeeReader(r, h)); err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}

	key, err := RandomStorageKey()
	if err != nil {
		return "", "", fmt.Errorf("build storage key: %w", err)
	}
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
		Body:   &buf,
	})
	if err != nil {
		return "", "", fmt.Errorf("upload document: %w", err)
	}

	return key, hex.EncodeToString(h.Sum(nil)), nil
}

// PresignGet issues a 15-minute download URL for a stored document.
func (s *Service) PresignGet(ctx context.Context, key string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", fmt.Errorf("build s3 client: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign document url: %w", err)
	}

	return req.URL, nil
}
