package imagekit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/storage"
)

// UploadAPI pushes the rendered bytes to ImageKit's upload endpoint and
// returns the CDN URL it assigns.
type UploadAPI struct {
	uploadURL  string
	privateKey string
	folder     string
	client     *http.Client
}

type UploadAPIOptions struct {
	UploadURL  string
	PrivateKey string
	Folder     string
	HTTPClient *http.Client
}

func NewUploadAPI(opts UploadAPIOptions) (*UploadAPI, error) {
	if strings.TrimSpace(opts.PrivateKey) == "" {
		return nil, errors.New("imagekit private key is required")
	}
	uploadURL := strings.TrimSpace(opts.UploadURL)
	if uploadURL == "" {
		uploadURL = "https://upload.imagekit.io/api/v1/files/upload"
	}
	folder := strings.Trim(strings.TrimSpace(opts.Folder), "/")
	if folder == "" {
		folder = "thumbnails"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &UploadAPI{
		uploadURL:  uploadURL,
		privateKey: strings.TrimSpace(opts.PrivateKey),
		folder:     folder,
		client:     client,
	}, nil
}

type uploadResponse struct {
	URL string `json:"url"`
}

func (u *UploadAPI) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	dataURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	fields := map[string]string{
		"file":              dataURI,
		"fileName":          fileName,
		"folder":            "/" + u.folder,
		"useUniqueFileName": "false",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("%w: encode upload form: %v", domain.ErrUpstreamFailure, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: finalize upload form: %v", domain.ErrUpstreamFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("%w: build upload request: %v", domain.ErrUpstreamFailure, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(u.privateKey, "")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %v", domain.ErrUpstreamFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: upload status %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", domain.ErrUpstreamFailure, err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", fmt.Errorf("%w: upload returned no url", domain.ErrUpstreamFailure)
	}
	return out.URL, nil
}

var _ Uploader = (*UploadAPI)(nil)

// FileUploader stores rendered bytes on the local filesystem and serves them
// under the configured static base URL. It is the development substitute for
// the hosted upload API.
type FileUploader struct {
	store   *storage.FileStore
	baseURL string
	folder  string
	now     func() time.Time
}

func NewFileUploader(store *storage.FileStore, baseURL string) *FileUploader {
	return &FileUploader{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  "thumbnails",
		now:     time.Now,
	}
}

func (f *FileUploader) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	if f == nil || f.store == nil {
		return "", fmt.Errorf("%w: file uploader not configured", domain.ErrUpstreamFailure)
	}
	key := fmt.Sprintf("%s/%d-%s", f.folder, f.now().UnixNano(), fileName)
	savedKey, err := f.store.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("%w: persist image: %v", domain.ErrUpstreamFailure, err)
	}
	return f.baseURL + "/" + savedKey, nil
}

var _ Uploader = (*FileUploader)(nil)
