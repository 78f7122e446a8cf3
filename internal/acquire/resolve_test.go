// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"errors"
	"strings"
	"testing"
)

const pageURL = "https://cpj.org/data/people/rami-ayyad/"

func TestResolveImageURL(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		opts    ResolveOptions
		want    string
		wantErr error
	}{
		{
			name: "absolute src",
			html: `<html><body><img id="photoUrl" src="https://cpj.org/wp-content/uploads/rami.jpg"></body></html>`,
			want: "https://cpj.org/wp-content/uploads/rami.jpg",
		},
		{
			name: "relative src resolved",
			html: `<img id="photoUrl" src="../../../wp-content/uploads/rami.png">`,
			want: "https://cpj.org/wp-content/uploads/rami.png",
		},
		{
			name: "root-relative src",
			html: `<img id="photoUrl" src="/img/rami.webp">`,
			want: "https://cpj.org/img/rami.webp",
		},
		{
			name: "lazy placeholder",
			html: `<img id="photoUrl" src="data:image/gif;base64,R0lGOD" data-src="/img/rami.jpg">`,
			want: "https://cpj.org/img/rami.jpg",
		},
		{
			name:    "empty src",
			html:    `<img id="photoUrl" src="">`,
			wantErr: ErrNoImage,
		},
		{
			name:    "no element",
			html:    `<html><body><img id="logo" src="/logo.png"></body></html>`,
			wantErr: ErrNoImage,
		},
		{
			name: "custom selector",
			html: `<div class="portrait"><img src="/p.jpg"></div>`,
			opts: ResolveOptions{Selector: ".portrait img"},
			want: "https://cpj.org/p.jpg",
		},
		{
			name: "first usable match wins",
			html: `<img class="p" src=""><img class="p" src="/second.jpg"><img class="p" src="/third.jpg">`,
			opts: ResolveOptions{Selector: "img.p"},
			want: "https://cpj.org/second.jpg",
		},
		{
			name: "protocol-relative",
			html: `<img id="photoUrl" src="//images.cpj.org/rami.jpg">`,
			want: "https://images.cpj.org/rami.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveImageURL(tt.html, pageURL, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveImageURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveImageURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveImageURLRejectsNonHTTP(t *testing.T) {
	_, err := ResolveImageURL(`<img id="photoUrl" src="ftp://cpj.org/rami.jpg">`, pageURL, ResolveOptions{})
	if err == nil || errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v, want unsupported URL error", err)
	}
}

func TestResolveImageURLLeadImageFallback(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><head><title>Rami Ayyad</title>`)
	b.WriteString(`<meta property="og:image" content="https://cpj.org/og/rami.jpg">`)
	b.WriteString(`</head><body><article><h1>Rami Ayyad</h1>`)
	for i := 0; i < 8; i++ {
		b.WriteString(`<p>Rami Ayyad was a Palestinian journalist who worked for local outlets in Gaza, `)
		b.WriteString(`reporting on daily life, the blockade, and the human cost of the conflict for many years.</p>`)
	}
	b.WriteString(`</article></body></html>`)
	html := b.String()

	if _, err := ResolveImageURL(html, pageURL, ResolveOptions{}); !errors.Is(err, ErrNoImage) {
		t.Fatalf("without fallback: err = %v, want ErrNoImage", err)
	}

	got, err := ResolveImageURL(html, pageURL, ResolveOptions{LeadImage: true})
	if err != nil {
		t.Fatalf("with fallback: %v", err)
	}
	if got != "https://cpj.org/og/rami.jpg" {
		t.Errorf("lead image = %q", got)
	}
}
