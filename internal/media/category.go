package media

import (
	"path"
	"strings"
)

// File categories shown in the media library.
const (
	CategoryImage    = "image"
	CategoryVideo    = "video"
	CategoryAudio    = "audio"
	CategoryDocument = "document"
	CategoryOther    = "other"
)

var categoriesByExt = map[string]string{
	".jpg": CategoryImage, ".jpeg": CategoryImage, ".png": CategoryImage, ".gif": CategoryImage,
	".webp": CategoryImage, ".svg": CategoryImage, ".avif": CategoryImage, ".ico": CategoryImage,
	".mp4": CategoryVideo, ".webm": CategoryVideo, ".mov": CategoryVideo, ".m4v": CategoryVideo,
	".mp3": CategoryAudio, ".wav": CategoryAudio, ".ogg": CategoryAudio, ".m4a": CategoryAudio,
	".pdf": CategoryDocument, ".doc": CategoryDocument, ".docx": CategoryDocument, ".odt": CategoryDocument,
	".xls": CategoryDocument, ".xlsx": CategoryDocument, ".ppt": CategoryDocument, ".pptx": CategoryDocument,
	".txt": CategoryDocument, ".csv": CategoryDocument,
}

// Category infers the library category from the key's extension.
func Category(key string) string {
	if c, ok := categoriesByExt[strings.ToLower(path.Ext(key))]; ok {
		return c
	}
	return CategoryOther
}
