// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Attempt records the outcome of fetching one journalist's photo.
type Attempt struct {
	Name       string        `json:"name" yaml:"name"`
	Row        int           `json:"row" yaml:"row"`
	ProfileURL string        `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`
	ImageURL   string        `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	FilePath   string        `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Status     AcquireStatus `json:"status" yaml:"status"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	At         time.Time     `json:"attempted_at" yaml:"attempted_at"`
}
