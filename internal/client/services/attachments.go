package services

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/filex"
	"github.com/dmitrijs2005/gophjournal/internal/netx"
)

// MaxAttachmentBytes caps a single uploaded file.
const MaxAttachmentBytes = 10 << 20

// seams for tests
var (
	readAttachment = filex.ReadAttachment
	uploadObject   = netx.UploadToPresignedURL
)

// AttachmentService uploads local files to blob storage and returns the
// locator to store in an entry's attachments.
type AttachmentService interface {
	Upload(ctx context.Context, path string) (string, error)
}

type attachmentService struct {
	client client.Client
}

func NewAttachmentService(c client.Client) AttachmentService {
	return &attachmentService{client: c}
}

func (s *attachmentService) Upload(ctx context.Context, path string) (string, error) {
	name, data, err := readAttachment(path, MaxAttachmentBytes)
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))

	target, err := s.client.PresignUpload(ctx, name, contentType)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", name, err)
	}

	if err := uploadObject(ctx, target.UploadURL, contentType, data); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return target.PublicURL, nil
}
