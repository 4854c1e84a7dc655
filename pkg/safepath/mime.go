package safepath

import (
	"path/filepath"
	"strings"
)

var mimeByExtension = map[string]string{
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".sql":  "application/sql",
	".txt":  "text/plain; charset=utf-8",
}

// ContentType picks a MIME type from the file extension; unknown extensions
// get a generic binary type.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
