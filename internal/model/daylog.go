package model

import (
	"encoding/json"
	"strings"
)

// DateLayout is the layout of DayLog keys.
const DateLayout = "2006-01-02"

// FileList is the ordered list of files edited on a day. It is stored
// comma-joined, matching the format existing documents use.
type FileList []string

// ParseFileList splits a comma-joined file list, trimming names and
// dropping empty ones.
func ParseFileList(s string) FileList {
	files := FileList{}
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// String returns the comma-joined storage form.
func (fl FileList) String() string {
	return strings.Join(fl, ",")
}

// Contains reports whether name is already in the list.
func (fl FileList) Contains(name string) bool {
	for _, f := range fl {
		if f == name {
			return true
		}
	}
	return false
}

func (fl FileList) MarshalJSON() ([]byte, error) {
	return json.Marshal(fl.String())
}

// UnmarshalJSON accepts the comma-joined string form as well as a JSON array.
func (fl *FileList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fl = ParseFileList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*fl = ParseFileList(strings.Join(list, ","))
	return nil
}

// DayLog is the record of one calendar day's logged work.
type DayLog struct {
	Date        string   `json:"date"`
	Projects    []string `json:"projects"`
	Description string   `json:"description"`
	Files       FileList `json:"files"`
	// FileProjectMap is nil for legacy records written before files were
	// assigned to projects.
	FileProjectMap  map[string]string `json:"fileProjectMap"`
	FileCategoryMap map[string]string `json:"fileCategoryMap,omitempty"`
	UserID          string            `json:"userId"`
}

// IsEmpty reports whether the log carries no description, files or
// projects. Empty logs are deleted rather than stored.
func (l DayLog) IsEmpty() bool {
	return strings.TrimSpace(l.Description) == "" && len(l.Files) == 0 && len(l.Projects) == 0
}

// Clone returns a deep copy, so drafts never share maps or slices with the
// month index.
func (l DayLog) Clone() DayLog {
	c := l
	c.Projects = append([]string(nil), l.Projects...)
	c.Files = append(FileList(nil), l.Files...)
	c.FileProjectMap = cloneMap(l.FileProjectMap)
	c.FileCategoryMap = cloneMap(l.FileCategoryMap)
	return c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
