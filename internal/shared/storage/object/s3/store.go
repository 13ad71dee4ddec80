package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"assessment-backend/internal/shared/storage/object"
	"assessment-backend/internal/shared/util"
)

// TemporaryTag marks every upload so a bucket lifecycle rule can expire
// objects a crashed process never released.
const TemporaryTag = "retention=temporary"

type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store keeps temporary uploads in S3 under a key prefix, encrypted at rest.
type Store struct {
	client   api
	bucket   string
	prefix   string
	kmsKeyID string
}

// New loads the default AWS credential chain and returns a Store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		prefix:   normalizePrefix(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Save streams r to S3. The returned key is relative to the store prefix.
func (s *Store) Save(ctx context.Context, ownerID string, fileName string, r io.Reader) (string, int64, string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	storageKey := path.Join(util.OwnerKey(ownerID), uuid.NewString()+"_"+name)
	objectKey := applyPrefix(s.prefix, storageKey)

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read upload: %w", readErr)
	}
	mimeType := http.DetectContentType(sniff[:n])
	counter := &countingReader{r: io.MultiReader(bytes.NewReader(sniff[:n]), r)}

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(objectKey),
		Body:               counter,
		ContentType:        aws.String(mimeType),
		ContentDisposition: aws.String("attachment; filename*=UTF-8''" + url.PathEscape(name)),
		Tagging:            aws.String(TemporaryTag),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", 0, "", fmt.Errorf("s3 put object key=%s: %w", objectKey, err)
	}
	return storageKey, counter.n, mimeType, nil
}

// Open streams a stored upload. A missing key returns object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("s3 get object key=%s: %w", objectKey, object.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get object key=%s: %w", objectKey, err)
	}
	return out.Body, nil
}

// Delete removes a stored upload. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	objectKey := applyPrefix(s.prefix, storageKey)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("s3 delete object key=%s: %w", objectKey, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	key = strings.TrimLeft(key, "/")
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "/" + key
	}
}

var _ object.ObjectStore = (*Store)(nil)
