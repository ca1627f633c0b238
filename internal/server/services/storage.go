package services

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
)

const (
	uploadURLExpiry = 15 * time.Minute
	// S3 caps presigned URLs at seven days.
	downloadURLExpiry = 7 * 24 * time.Hour
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// UploadTarget tells a client where to PUT an attachment and which locator
// to store once the upload succeeded.
type UploadTarget struct {
	Key       string
	UploadURL string
	PublicURL string
}

type StorageService struct {
	config *config.Config
	now    func() time.Time
}

func NewStorageService(cfg *config.Config) *StorageService {
	return &StorageService{config: cfg, now: time.Now}
}

// AttachmentKey builds "journal-attachments/<user>/<unix-ms>-<random><.ext>".
// The extension is dropped when it is not short and alphanumeric.
func AttachmentKey(userID, fileName string, now time.Time) (string, error) {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(fileName))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("%s/%s/%d-%s%s", common.AttachmentsPrefix, userID, now.UnixMilli(), suffix, ext), nil
}

func (s *StorageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload reserves a key for fileName under userID and returns a
// presigned PUT plus the locator to keep in the entry: a URL under
// PublicBaseURL when configured, a presigned GET otherwise.
func (s *StorageService) PresignUpload(ctx context.Context, userID, fileName, contentType string) (*UploadTarget, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", common.ErrorValidation)
	}

	key, err := AttachmentKey(userID, fileName, s.now())
	if err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	put, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(uploadURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	target := &UploadTarget{Key: key, UploadURL: put.URL}

	if base := strings.TrimRight(s.config.PublicBaseURL, "/"); base != "" {
		target.PublicURL = base + "/" + key
		return target, nil
	}

	get, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key},
		s3.WithPresignExpires(downloadURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}
	target.PublicURL = get.URL
	return target, nil
}
