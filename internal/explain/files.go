package explain

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"
)

const (
	mimePDF     = "application/pdf"
	mimeGeneric = "application/octet-stream"
)

// NormalizeMIME returns the declared MIME type, or one inferred from the file
// extension. File contents are never inspected.
func NormalizeMIME(f FileAttachment) string {
	if m := strings.TrimSpace(f.MIMEType); m != "" {
		return m
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
	switch ext {
	case "pdf":
		return mimePDF
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png", "webp", "heic", "heif":
		return "image/" + ext
	default:
		return mimeGeneric
	}
}

func isPDF(f FileAttachment) bool {
	return strings.Contains(NormalizeMIME(f), "pdf") || strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

func isImage(f FileAttachment) bool {
	return f.IsImage || strings.HasPrefix(NormalizeMIME(f), "image/")
}

// filePart decodes the attachment payload into a model part.
func filePart(f FileAttachment) (FilePart, error) {
	data, err := decodeBase64(f.Data)
	if err != nil {
		return FilePart{}, &Error{
			Kind:    KindInvalidInput,
			Message: fmt.Sprintf("Invalid input: File %q is not valid base64 data", f.Name),
			Err:     err,
		}
	}
	return FilePart{Name: f.Name, MIMEType: NormalizeMIME(f), Data: data}, nil
}

// decodeBase64 accepts standard padded data and tolerates a data: URL prefix
// such as the one produced by FileReader.readAsDataURL.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
