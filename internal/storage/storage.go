// Package storage keeps resume files behind opaque keys. Callers never see
// bucket names or filesystem paths.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"campusintern/internal/common"
)

type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ResumeKey builds a fresh key per upload so a failed re-upload never
// clobbers the file the stored reference still points at.
func ResumeKey(applicationID common.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return "resumes/" + applicationID.String() + "/" + common.NewUUID().String() + ext
}

func notFound(err error) error {
	return common.NewError(common.CodeNotFound, "resume not found", err)
}

func storageFailure(message string, err error) error {
	return common.NewError(common.CodeStorage, message, err)
}
