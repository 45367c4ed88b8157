package explain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeMIME(t *testing.T) {
	tests := []struct {
		file FileAttachment
		want string
	}{
		{FileAttachment{Name: "report.pdf"}, "application/pdf"},
		{FileAttachment{Name: "REPORT.PDF"}, "application/pdf"},
		{FileAttachment{Name: "photo.jpg"}, "image/jpeg"},
		{FileAttachment{Name: "photo.jpeg"}, "image/jpeg"},
		{FileAttachment{Name: "shot.png"}, "image/png"},
		{FileAttachment{Name: "pic.webp"}, "image/webp"},
		{FileAttachment{Name: "iphone.HEIC"}, "image/heic"},
		{FileAttachment{Name: "iphone.heif"}, "image/heif"},
		{FileAttachment{Name: "notes.txt"}, "application/octet-stream"},
		{FileAttachment{Name: "noextension"}, "application/octet-stream"},
		{FileAttachment{Name: "archive.tar.gz"}, "application/octet-stream"},
		{FileAttachment{Name: "notes.txt", MIMEType: "text/plain"}, "text/plain"},
		{FileAttachment{Name: "report.pdf", MIMEType: "image/png"}, "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.file.Name+"_"+tt.file.MIMEType, func(t *testing.T) {
			if got := NormalizeMIME(tt.file); got != tt.want {
				t.Errorf("NormalizeMIME(%+v) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestDecodeBase64(t *testing.T) {
	req := require.New(t)

	data, err := decodeBase64("aGVsbG8=")
	req.NoError(err)
	req.Equal("hello", string(data))

	data, err = decodeBase64("aGVsbG8")
	req.NoError(err)
	req.Equal("hello", string(data))

	data, err = decodeBase64("data:text/plain;base64,aGVsbG8=")
	req.NoError(err)
	req.Equal("hello", string(data))

	_, err = decodeBase64("%%%")
	req.Error(err)
}

func TestIsImage(t *testing.T) {
	req := require.New(t)
	req.True(isImage(FileAttachment{Name: "a.png"}))
	req.True(isImage(FileAttachment{Name: "blob", IsImage: true}))
	req.False(isImage(FileAttachment{Name: "a.pdf"}))
}
