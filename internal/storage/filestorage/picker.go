package storage

import (
	"context"
	"fmt"
	"mime/multipart"
)

// UploadPicker turns an optional multipart upload into an image pick.
// A request without a file counts as a cancelled pick.
type UploadPicker struct {
	Storage FileStorage
	File    *multipart.FileHeader
	SubPath string
}

func (p UploadPicker) PickImage(ctx context.Context) (string, bool, error) {
	if p.File == nil {
		return "", false, nil
	}

	rel, _, err := p.Storage.Save(ctx, p.File, p.SubPath)
	if err != nil {
		return "", false, fmt.Errorf("save upload: %w", err)
	}

	return p.Storage.URL(rel), true, nil
}
