// Package resume finds the resume PDF, either on local disk or in an S3 bucket.
package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Instructions are shown when no resume has been uploaded.
var Instructions = []string{
	"Save your resume as resume.pdf",
	"Place it in the public folder, or upload it to the configured S3 bucket",
	"Refresh this page to view it",
}

// Info describes where the resume can be fetched from.
type Info struct {
	Available    bool     `json:"available"`
	URL          string   `json:"url,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	// Path is set for a local file and is never sent to clients.
	Path string `json:"-"`
}

type Locator interface {
	Locate(ctx context.Context) (Info, error)
}

func missing() Info {
	return Info{Instructions: Instructions}
}

// Local serves a file from disk at a fixed public URL.
type Local struct {
	path      string
	publicURL string
}

func NewLocal(path, publicURL string) *Local {
	return &Local{path: path, publicURL: publicURL}
}

func (l *Local) Locate(context.Context) (Info, error) {
	fi, err := os.Stat(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return missing(), nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat resume: %w", err)
	}
	if fi.IsDir() || fi.Size() == 0 {
		return missing(), nil
	}
	return Info{Available: true, URL: l.publicURL, Path: l.path}, nil
}

type headAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3 hands out short-lived presigned links to an object.
type S3 struct {
	head    headAPI
	presign presignAPI
	bucket  string
	key     string
	ttl     time.Duration
}

func NewS3(client *s3.Client, bucket, key string, ttl time.Duration) *S3 {
	return &S3{
		head:    client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		key:     key,
		ttl:     ttl,
	}
}

func (s *S3) Locate(ctx context.Context) (Info, error) {
	_, err := s.head.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return missing(), nil
		}
		return Info{}, fmt.Errorf("failed to check resume object: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(s.key),
		ResponseContentType:        aws.String("application/pdf"),
		ResponseContentDisposition: aws.String(`inline; filename="resume.pdf"`),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return Info{}, fmt.Errorf("failed to presign resume URL: %w", err)
	}
	return Info{Available: true, URL: req.URL}, nil
}
