package models

import "time"

// Project is one directory under the projects root. ID is the encoded
// directory name; Path is the decoded working directory.
type Project struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Path           string     `json:"path"`
	SessionCount   int        `json:"sessionCount"`
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
}
