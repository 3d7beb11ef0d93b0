package models

import (
	"strings"
	"time"
)

// Author is the public part of an uploader's profile.
type Author struct {
	ID          int64  `json:"id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Name returns the display name, falling back to the username.
func (a Author) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// FileSummary describes a file offered on the marketplace.
type FileSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	FileName    string  `json:"fileName,omitempty"`
	FileType    string  `json:"fileType,omitempty"`
	FileSize    int64   `json:"fileSize,omitempty"`
	Price       float64 `json:"price,omitempty"`
	User        Author  `json:"user"`
}

// FileKind is a coarse classification of a MIME type, used for display.
type FileKind string

const (
	FileKindDocument FileKind = "document"
	FileKindImage    FileKind = "image"
	FileKindVideo    FileKind = "video"
	FileKindAudio    FileKind = "audio"
	FileKindArchive  FileKind = "archive"
)

// Kind classifies the file by its MIME type.
func (f FileSummary) Kind() FileKind {
	t := strings.ToLower(f.FileType)
	switch {
	case strings.HasPrefix(t, "image/"):
		return FileKindImage
	case strings.HasPrefix(t, "video/"):
		return FileKindVideo
	case strings.HasPrefix(t, "audio/"):
		return FileKindAudio
	case strings.Contains(t, "zip"), strings.Contains(t, "rar"),
		strings.Contains(t, "tar"), strings.Contains(t, "7z"), strings.Contains(t, "gzip"):
		return FileKindArchive
	default:
		return FileKindDocument
	}
}

// Purchase is one entry of a buyer's purchase list.
type Purchase struct {
	ID           int64       `json:"id"`
	PurchaseDate time.Time   `json:"purchaseDate"`
	DownloadURL  string      `json:"downloadUrl"`
	File         FileSummary `json:"file"`
}

// PurchaseListRequest scopes the purchase list to a buyer email.
type PurchaseListRequest struct {
	Email string `json:"email"`
}
