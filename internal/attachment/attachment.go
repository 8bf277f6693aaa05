// Package attachment validates and encodes files sent along with a prompt.
package attachment

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// MaxFileSize is the largest file the API accepts inline
const MaxFileSize = models.MaxFileSize

// MIME types accepted besides image/*
const (
	MIMEPDF  = "application/pdf"
	MIMEDoc  = "application/msword"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

// extensionTypes covers the accepted document types, which the platform
// MIME tables do not always know.
var extensionTypes = map[string]string{
	".pdf":  MIMEPDF,
	".doc":  MIMEDoc,
	".docx": MIMEDocx,
	".txt":  MIMEText,
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// SupportedExtensions lists the extensions the file prompt suggests
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".pdf", ".doc", ".docx", ".txt"}
}

// IsSupportedType reports whether mimeType may be attached
func IsSupportedType(mimeType string) bool {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return true
	case mimeType == MIMEPDF, mimeType == MIMEDoc, mimeType == MIMEDocx, mimeType == MIMEText:
		return true
	default:
		return false
	}
}

// Inspect stats the file at path and checks it can be attached. Nothing is
// read beyond what MIME sniffing needs.
func Inspect(path string) (models.Attachment, error) {
	path = expandHome(strings.TrimSpace(path))

	info, err := os.Stat(path)
	if err != nil {
		return models.Attachment{}, apierrors.NewFileError(path, err)
	}
	if info.IsDir() {
		return models.Attachment{}, apierrors.NewFileError(path, errIsDir)
	}

	name := filepath.Base(path)
	if info.Size() > MaxFileSize {
		return models.Attachment{}, &apierrors.FileTooLargeError{
			Name:  name,
			Size:  info.Size(),
			Limit: MaxFileSize,
		}
	}

	mimeType, err := DetectMIME(path)
	if err != nil {
		return models.Attachment{}, apierrors.NewFileError(path, err)
	}
	if !IsSupportedType(mimeType) {
		return models.Attachment{}, &apierrors.UnsupportedTypeError{Name: name, MIMEType: mimeType}
	}

	return models.Attachment{
		Path:     path,
		Name:     name,
		Size:     info.Size(),
		MIMEType: mimeType,
	}, nil
}

// DetectMIME resolves the MIME type by extension, then by content
func DetectMIME(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extensionTypes[ext]; ok {
		return t, nil
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseType(t), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return baseType(http.DetectContentType(head[:n])), nil
}

// baseType drops parameters such as charset
func baseType(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
