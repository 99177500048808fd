package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds the S3 connection settings for the audio media store.
type Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint points at an S3-compatible server (MinIO) when non-empty.
	Endpoint string
	// URLTTL is the lifetime of presigned audio URLs.
	URLTTL time.Duration
}

// S3MediaStore persists generated narration in an S3 bucket and hands out
// presigned GET URLs.
type S3MediaStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	urlTTL  time.Duration
}

// NewS3MediaStore builds the store from config. Static credentials are used
// when provided, otherwise the default AWS credential chain applies.
func NewS3MediaStore(ctx context.Context, cfg Config) (*S3MediaStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 media store: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	urlTTL := cfg.URLTTL
	if urlTTL <= 0 {
		urlTTL = 24 * time.Hour
	}

	return &S3MediaStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		urlTTL:  urlTTL,
	}, nil
}

// StoreAudio uploads the narration stream and returns a presigned URL for it.
// The stream is buffered first; the SDK needs a seekable body for signing.
func (s *S3MediaStore) StoreAudio(ctx context.Context, userID, storyID string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("store audio: read stream: %w", err)
	}

	key := fmt.Sprintf("audio-stories/%s/%s.mp3", userID, storyID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("store audio: put: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("store audio: presign: %w", err)
	}

	return req.URL, nil
}
