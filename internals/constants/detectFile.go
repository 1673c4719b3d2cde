package constants

import (
	"path/filepath"
	"strings"
)

// Kategori file untuk kolom notes.file_type
const (
	FileTypeOther = "other"
	FileTypeAudio = "audio"
	FileTypeDoc   = "doc"
	FileTypePDF   = "pdf"
	FileTypeSlide = "slide"
	FileTypeImage = "image"
	FileTypeVideo = "video"
	FileTypeZip   = "archive"
)

func DetectFileTypeFromExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".mp3", ".wav", ".m4a":
		return FileTypeAudio
	case ".doc", ".docx", ".odt", ".txt", ".md":
		return FileTypeDoc
	case ".pdf":
		return FileTypePDF
	case ".ppt", ".pptx", ".key":
		return FileTypeSlide
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return FileTypeImage
	case ".mp4", ".mov", ".webm":
		return FileTypeVideo
	case ".zip", ".rar", ".7z", ".tar", ".gz":
		return FileTypeZip
	default:
		return FileTypeOther
	}
}
