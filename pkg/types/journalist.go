// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Journalist holds one row of the source table. Every field except Name is
// optional; values are carried verbatim from the export with surrounding
// whitespace removed.
type Journalist struct {
	// Name is the page heading and the cache key for the profile image.
	Name string `json:"name" yaml:"name"`

	// ProfileURL is the profile page that carries the photo (e.g. a cpj.org URL).
	ProfileURL string `json:"profile_url,omitempty" yaml:"profile_url,omitempty"`

	// Date is the date of death as written in the export.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// Affiliation lists the outlets the journalist worked for.
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`

	// Location is where the journalist was killed.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Circumstances describes how the journalist died.
	Circumstances string `json:"circumstances,omitempty" yaml:"circumstances,omitempty"`

	// Row is the 1-based line number of the record in the CSV file.
	Row int `json:"row" yaml:"row"`
}

// HasProfile reports whether the record names a page to fetch a photo from.
func (j Journalist) HasProfile() bool {
	return j.ProfileURL != ""
}

// FieldKind identifies a body field printed under the heading.
type FieldKind string

const (
	FieldDate          FieldKind = "date"
	FieldAffiliation   FieldKind = "affiliation"
	FieldLocation      FieldKind = "location"
	FieldCircumstances FieldKind = "circumstances"
)

// Field is one labelled body value.
type Field struct {
	Kind  FieldKind
	Value string
}

// Fields returns the non-empty body fields in page order.
func (j Journalist) Fields() []Field {
	all := []Field{
		{FieldDate, j.Date},
		{FieldAffiliation, j.Affiliation},
		{FieldLocation, j.Location},
		{FieldCircumstances, j.Circumstances},
	}
	fields := make([]Field, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// AcquireStatus is the outcome of fetching one journalist's photo.
type AcquireStatus string

const (
	StatusDownloaded AcquireStatus = "downloaded"
	StatusNoImage    AcquireStatus = "no-image"
	StatusNoSource   AcquireStatus = "no-source"
	StatusFailed     AcquireStatus = "failed"
)

// ImageSource tells where Document Assembly found a page's photo.
type ImageSource string

const (
	SourceNone    ImageSource = ""
	SourceExact   ImageSource = "exact"
	SourceMatched ImageSource = "matched"
)
