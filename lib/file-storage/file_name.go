package filestorage

import (
	"fmt"
	"regexp"
)

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

const maxFileNameLen = 200

func SanitizeFileName(name string) string {
	result := unsafeFileNameChars.ReplaceAllString(name, "_")
	if len(result) > maxFileNameLen {
		result = result[:maxFileNameLen]
	}
	if result == "" {
		return "file"
	}
	return result
}

// TaskFilePath путь файла задачи в хранилище
func TaskFilePath(taskID, fileName string) string {
	return fmt.Sprintf("bpm/tasks/%s/%s", taskID, SanitizeFileName(fileName))
}
