// Package archiver uploads a daily gzip snapshot of the announcement audit
// log to S3, with a _SUCCESS marker and head-before-put idempotency.
package archiver

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awshttp "github.com/aws/smithy-go/transport/http"
)

type S3Sink struct {
	Bucket string
	Client *s3.Client
	Up     *manager.Uploader
}

func NewS3Sink(ctx context.Context, bucket, region string) (*S3Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3Sink{
		Bucket: bucket,
		Client: client,
		Up:     manager.NewUploader(client),
	}, nil
}

func (s *S3Sink) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == 404 {
		return false, nil
	}
	return false, err
}

// PutGzip streams fill's output through gzip into the object at key.
func (s *S3Sink) PutGzip(ctx context.Context, key string, fill func(w io.Writer) error) error {
	pr, pw := io.Pipe()
	gw := gzip.NewWriter(pw)

	done := make(chan error, 1)
	go func() {
		err := fill(gw)
		if cerr := gw.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
		done <- err
	}()

	_, err := s.Up.Upload(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.Bucket),
		Key:             aws.String(key),
		Body:            pr,
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		_ = pr.CloseWithError(err)
		<-done
		return err
	}
	return <-done
}

func (s *S3Sink) PutMarker(ctx context.Context, key string) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(""),
	})
	return err
}
