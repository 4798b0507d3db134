package common

import "strings"

// MediaFileType represents the stored payload kind for non-text messages
type MediaFileType string

const (
	MediaFileTypeAudio MediaFileType = "audio"
	MediaFileTypeVideo MediaFileType = "video"
)

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid checks if the media file type is valid
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeAudio || mft == MediaFileTypeVideo
}

func DetectFileType(mimeType string) MediaFileType {
	lowerMimeType := strings.ToLower(mimeType)
	if strings.HasPrefix(lowerMimeType, "video/") {
		return MediaFileTypeVideo
	}
	if strings.HasPrefix(lowerMimeType, "audio/") {
		return MediaFileTypeAudio
	}
	return MediaFileTypeAudio // Default fallback
}
