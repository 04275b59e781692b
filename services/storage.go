package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
)

// coverPrefix is the fixed logical prefix for project cover images.
const coverPrefix = "covers/"

// ObjectPutter is the slice of the S3 client the cover store uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// CoverStore uploads project cover images to object storage and hands back
// their public URL.
type CoverStore struct {
	client        ObjectPutter
	bucket        string
	region        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewCoverStore builds a CoverStore against S3 in the given region.
func NewCoverStore(ctx context.Context, bucket, region, publicBaseURL string) (*CoverStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &CoverStore{
		client:        s3.NewFromConfig(cfg),
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        log.With().Str("serviceName", "coverStore").Logger(),
	}, nil
}

// NewCoverStoreWithClient wires an existing client; used by tests.
func NewCoverStoreWithClient(client ObjectPutter, bucket, region, publicBaseURL string) *CoverStore {
	return &CoverStore{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        log.With().Str("serviceName", "coverStore").Logger(),
	}
}

// UploadCover stores a cover image under the covers/ prefix and returns its
// public URL. The generated key is collision-resistant (timestamp plus
// random suffix) and the put is conditional, so an existing object fails the
// upload instead of being silently replaced.
func (s *CoverStore) UploadCover(ctx context.Context, sourceName string, body io.Reader) (string, error) {
	key := coverKey(sourceName, time.Now())

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
		IfNoneMatch:  aws.String("*"),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cover upload failed")
		return "", errs.NewUploadError(key, err)
	}

	return s.publicURL(key), nil
}

// coverKey builds "covers/<unix millis>_<random>.<ext>" with the extension
// inferred from the source name. Query strings on the source name are
// ignored; unknown extensions default to .jpg.
func coverKey(sourceName string, now time.Time) string {
	name := sourceName
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == "" || len(ext) > 8 {
		ext = ".jpg"
	}

	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s%d_%s%s", coverPrefix, now.UnixMilli(), suffix, ext)
}

func (s *CoverStore) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
