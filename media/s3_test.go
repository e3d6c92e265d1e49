package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadBuildsKeyAndURL(t *testing.T) {
	fake := &fakeS3{}
	u := newS3Uploader(fake, S3Options{Bucket: "blog", Region: "ap-south-1"})

	url, err := u.Upload(context.Background(), "banners/", "Sunset.JPG", strings.NewReader("pixels"), "image/jpeg")
	require.NoError(t, err)

	key := aws.ToString(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "banners/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "blog", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "pixels", fake.body)
	assert.Equal(t, "https://blog.s3.ap-south-1.amazonaws.com/"+key, url)
}

func TestUploadUsesPublicBaseURL(t *testing.T) {
	fake := &fakeS3{}
	u := newS3Uploader(fake, S3Options{Bucket: "blog", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"})

	url, err := u.Upload(context.Background(), "banners/", "a.png", strings.NewReader("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(fake.input.Key), url)
}

func TestUploadError(t *testing.T) {
	u := newS3Uploader(&fakeS3{err: errors.New("denied")}, S3Options{Bucket: "blog", Region: "us-east-1"})
	_, err := u.Upload(context.Background(), "banners/", "a.png", strings.NewReader("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
