package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner issues presigned PUT URLs for product images.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error)
	PublicURL(key string) string
}

// S3Presigner presigns uploads into a single bucket.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	region string
}

func NewS3Presigner(cfg sdkaws.Config, bucket string) *S3Presigner {
	return &S3Presigner{
		client: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket: bucket,
		region: cfg.Region,
	}
}

// PresignPut returns the URL and the headers the client must send with the PUT.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, map[string]string, error) {
	input := &s3.PutObjectInput{
		Bucket:      sdkaws.String(p.bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
	}

	presigned, err := p.client.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string, len(presigned.SignedHeader))
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return presigned.URL, headers, nil
}

// PublicURL is the URL the image is served from once uploaded.
func (p *S3Presigner) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}
