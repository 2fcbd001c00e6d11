package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mediashare/internal/client/models"
)

// Sender performs an authenticated request and decodes the JSON reply.
// *client.HTTPClient satisfies it.
type Sender interface {
	Send(ctx context.Context, req *http.Request, token string, out any) error
}

// HTTPUploader posts the file as multipart field "file" to <base>/upload.
type HTTPUploader struct {
	sender Sender
	url    string
}

var _ Uploader = (*HTTPUploader)(nil)

func NewHTTPUploader(sender Sender, baseURL string) *HTTPUploader {
	return &HTTPUploader{sender: sender, url: strings.TrimSuffix(baseURL, "/") + "/upload"}
}

func (u *HTTPUploader) Upload(ctx context.Context, token string, file models.UploadFile) (*models.UploadedFile, error) {
	name := filepath.Base(file.Name)
	if file.Name == "" || name == "." || name == "/" {
		return nil, ErrEmptyFile
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
		h.Set("Content-Type", contentType(file))

		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, file.Body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.UploadResponse
	err = u.sender.Send(ctx, req, token, &out)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}
