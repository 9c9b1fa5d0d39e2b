package file_store

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

const (
	DefaultS3Region = "us-west-1"
	// HeadObject reports a missing key with this code rather than NoSuchKey.
	s3NotFoundCode = "NotFound"
)

type S3ImageStore struct {
	bucket    string
	keyPrefix string
	urlPrefix string
	uploader  *s3manager.Uploader
	svc       *s3.S3
}

// NewS3ImageStore reads the bucket from IMAGE_S3_BUCKET and the public url
// prefix (usually a CDN) from IMAGE_URL_PREFIX.
func NewS3ImageStore(keyPrefix string) (*S3ImageStore, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = DefaultS3Region
	}
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	bucket := os.Getenv("IMAGE_S3_BUCKET")
	urlPrefix := os.Getenv("IMAGE_URL_PREFIX")
	if urlPrefix == "" {
		urlPrefix = "https://" + bucket + ".s3." + region + ".amazonaws.com"
	}

	return &S3ImageStore{
		bucket:    bucket,
		keyPrefix: keyPrefix,
		urlPrefix: urlPrefix,
		uploader:  s3manager.NewUploader(sess),
		svc:       s3.New(sess),
	}, nil
}

// key places name under the key prefix, which may or may not end with "/".
func (s *S3ImageStore) key(name string) string {
	return path.Join(s.keyPrefix, name)
}

func (s *S3ImageStore) Save(ctx context.Context, name string, content io.Reader) error {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   content,
	})
	return errors.Wrap(err, "fail to upload image")
}

func (s *S3ImageStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err == nil {
		return true, nil
	}
	if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == s3NotFoundCode || aerr.Code() == s3.ErrCodeNoSuchKey) {
		return false, nil
	}
	return false, errors.Wrap(err, "fail to check image")
}

func (s *S3ImageStore) Delete(ctx context.Context, name string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return errors.Wrap(err, "fail to delete image")
}

func (s *S3ImageStore) UrlFor(name string) string {
	return strings.TrimSuffix(s.urlPrefix, "/") + "/" + s.key(name)
}
