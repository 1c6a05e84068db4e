package resume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.pdf")
	l := NewLocal(path, "/resume.pdf")

	info, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Available)
	assert.Equal(t, Instructions, info.Instructions)

	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	info, err = l.Locate(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Equal(t, "/resume.pdf", info.URL)
	assert.Equal(t, path, info.Path)
}

type fakeS3 struct {
	headErr error
	input   *s3.GetObjectInput
}

func (f *fakeS3) HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, f.headErr
}

func (f *fakeS3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3.amazonaws.com/resume.pdf?X-Amz-Signature=abc"}, nil
}

func TestS3(t *testing.T) {
	fake := &fakeS3{}
	s := &S3{head: fake, presign: fake, bucket: "site", key: "cv/resume.pdf"}

	info, err := s.Locate(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Available)
	assert.Contains(t, info.URL, "X-Amz-Signature")
	assert.Equal(t, "cv/resume.pdf", *fake.input.Key)
	assert.Empty(t, info.Path)

	fake.headErr = &types.NotFound{}
	info, err = s.Locate(context.Background())
	require.NoError(t, err)
	assert.False(t, info.Available)

	fake.headErr = errors.New("access denied")
	_, err = s.Locate(context.Background())
	assert.Error(t, err)
}
