package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		BaseEndpoint: "http://localhost:9000",
		Region:       "us-east-1",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		Bucket:       "deeds",
	}
}

func TestRandomStorageKey(t *testing.T) {
	k1, err := RandomStorageKey()
	require.NoError(t, err)
	k2, err := RandomStorageKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(k1, "documents/"))
	assert.Regexp(t, `/[0-9a-f]{32}$`, k1)
	assert.NotEqual(t, k1, k2)
}

func TestUpload(t *testing.T) {
	origPut := putObject
	defer func() { putObject = origPut }()

	var gotBucket, gotKey string
	var gotBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		gotBody = b
		return &s3.PutObjectOutput{}, nil
	}

	svc := NewService(testConfig())
	content := []byte("deed of transfer")

	key, hash, err := svc.Upload(context.Background(), strings.NewReader(string(content)))
	require.NoError(t, err)

	assert.Equal(t, "deeds", gotBucket)
	assert.Equal(t, gotKey, key)
	assert.Equal(t, content, gotBody)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)
}

func TestUpload_PutError(t *testing.T) {
	origPut := putObject
	defer func() { putObject = origPut }()

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket missing")
	}

	svc := NewService(testConfig())
	_, _, err := svc.Upload(context.Background(), strings.NewReader("x"))
	assert.Error(t, err)
}

func TestPresignGet(t *testing.T) {
	origPresign := presignGetObject
	defer func() { presignGetObject = origPresign }()

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		assert.Equal(t, "deeds", *in.Bucket)
		assert.Equal(t, "documents/2026/1/2/abc", *in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://localhost:9000/deeds/signed"}, nil
	}

	svc := NewService(testConfig())
	url, err := svc.PresignGet(context.Background(), "documents/2026/1/2/abc")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/deeds/signed", url)
}

func TestPresignGet_Error(t *testing.T) {
	origPresign := presignGetObject
	defer func() { presignGetObject = origPresign }()

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("no such key")
	}

	svc := NewService(testConfig())
	_, err := svc.PresignGet(context.Background(), "documents/nope")
	assert.Error(t, err)
}
