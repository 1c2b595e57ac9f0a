package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Sink publishes rendered exports under <run_id>/<name> in one bucket. The
// bucket is created lazily on first use.
type S3Sink struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Sink(cfg S3Config) (*S3Sink, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Sink{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Sink) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("sink is nil")
	}
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Put stores one rendered file for a run.
func (s *S3Sink) Put(ctx context.Context, runID, name string, content []byte) error {
	if s == nil {
		return fmt.Errorf("sink is nil")
	}
	runID = strings.TrimSpace(runID)
	name = strings.TrimSpace(name)
	if runID == "" {
		return fmt.Errorf("run_id is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	key := runID + "/" + strings.TrimLeft(name, "/")
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	return err
}

// PublishRun uploads the three standard exports for a finished run.
func (s *S3Sink) PublishRun(ctx context.Context, runID string, events, states, summary []byte) error {
	for _, obj := range []struct {
		name    string
		content []byte
	}{
		{"events.csv", events},
		{"state.csv", states},
		{"summary.csv", summary},
	} {
		if err := s.Put(ctx, runID, obj.name, obj.content); err != nil {
			return fmt.Errorf("publish %s: %w", obj.name, err)
		}
	}
	return nil
}
