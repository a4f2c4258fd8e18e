// Package entity defines the core domain entities and validation logic for the bot.
// It contains the Digest business object along with its validation rules and
// domain-specific errors.
package entity

import (
	"net/url"
	"time"
	"unicode/utf8"
)

// MaxCaptionRunes is the hard ceiling for a digest caption, counted in Unicode
// code points. Telegram photo captions allow 1024 characters; the digest format
// targets 800 to leave headroom for client-side rendering quirks.
const MaxCaptionRunes = 800

// Digest represents a single composed market digest ready for publishing.
// A digest is created fresh on every compose cycle and never mutated afterwards.
type Digest struct {
	Caption    string
	ImageURL   string
	CharCount  int
	Fallback   bool
	ComposedAt time.Time
}

// NewDigest builds a Digest from a composed caption and image URL.
// CharCount is derived from the caption; ComposedAt is set to the current time.
func NewDigest(caption, imageURL string, fallback bool) (*Digest, error) {
	d := &Digest{
		Caption:    caption,
		ImageURL:   imageURL,
		CharCount:  utf8.RuneCountInString(caption),
		Fallback:   fallback,
		ComposedAt: time.Now(),
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate checks the digest against domain invariants.
// A valid digest has a non-empty caption of at most MaxCaptionRunes code points
// and an absolute image URL.
func (d *Digest) Validate() error {
	if d.Caption == "" {
		return ErrEmptyCaption
	}

	if utf8.RuneCountInString(d.Caption) > MaxCaptionRunes {
		return ErrCaptionTooLong
	}

	if d.ImageURL != "" {
		u, err := url.Parse(d.ImageURL)
		if err != nil || !u.IsAbs() {
			return &ValidationError{Field: "ImageURL", Message: "must be an absolute URL"}
		}
	}

	return nil
}

// HasImage reports whether the digest carries an image to publish alongside
// the caption.
func (d *Digest) HasImage() bool {
	return d.ImageURL != ""
}
