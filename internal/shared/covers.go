package shared

import "strings"

// Cover size keys, ordered largest to smallest.
const (
	CoverOriginal  = "original"
	CoverLarge     = "large"
	CoverSmall     = "small"
	CoverThumbnail = "thumbnail"
)

var coverSizes = [...]string{CoverOriginal, CoverLarge, CoverSmall, CoverThumbnail}

// CoverVariant is one size entry of a CoverCatalog. URL is where the image
// can be fetched from, Path is where it already exists on disk. A variant
// with a non-empty Path must never be downloaded again.
type CoverVariant struct {
	Size string
	URL  string
	Path string
}

// CoverCatalog holds the artwork variants of one album or track, ordered
// largest first. Variants without a URL are simply absent from the service.
type CoverCatalog struct {
	variants [len(coverSizes)]CoverVariant
}

// NewCoverCatalog builds a catalog from per-size URLs. Empty strings mean
// the size is not offered.
func NewCoverCatalog(original, large, small, thumbnail string) *CoverCatalog {
	c := &CoverCatalog{}
	urls := [...]string{original, large, small, thumbnail}
	for i, size := range coverSizes {
		c.variants[i] = CoverVariant{Size: size, URL: urls[i]}
	}
	return c
}

// CoversFromQobuz builds a catalog from the image block of a Qobuz album
// payload. Qobuz only advertises up to 600px, but its CDN serves the
// untouched scan when the quality marker is replaced with "org".
func CoversFromQobuz(large, small, thumbnail string) *CoverCatalog {
	original := ""
	if large != "" {
		if i := strings.LastIndex(large, "600"); i >= 0 {
			original = large[:i] + "org" + large[i+3:]
		}
	}
	return NewCoverCatalog(original, large, small, thumbnail)
}

// Empty reports whether no variant has a URL or a local path.
func (c *CoverCatalog) Empty() bool {
	for i := range c.variants {
		if c.variants[i].URL != "" || c.variants[i].Path != "" {
			return false
		}
	}
	return true
}

// Largest returns the highest-resolution variant that is defined.
func (c *CoverCatalog) Largest() (*CoverVariant, bool) {
	for i := range c.variants {
		if c.variants[i].URL != "" || c.variants[i].Path != "" {
			return &c.variants[i], true
		}
	}
	return nil, false
}

// Get returns the variant for the requested size key. When that size is
// not defined it falls back to the nearest defined one, preferring smaller
// sizes over larger ones.
func (c *CoverCatalog) Get(size string) (*CoverVariant, bool) {
	start := -1
	for i, s := range coverSizes {
		if s == size {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}
	for i := start; i < len(c.variants); i++ {
		if c.variants[i].URL != "" || c.variants[i].Path != "" {
			return &c.variants[i], true
		}
	}
	for i := start - 1; i >= 0; i-- {
		if c.variants[i].URL != "" || c.variants[i].Path != "" {
			return &c.variants[i], true
		}
	}
	return nil, false
}

// SetLargestPath records the on-disk location of the largest variant.
func (c *CoverCatalog) SetLargestPath(path string) {
	if v, ok := c.Largest(); ok {
		v.Path = path
	}
}

// SetPath records the on-disk location of the variant Get(size) resolves to.
func (c *CoverCatalog) SetPath(size, path string) {
	if v, ok := c.Get(size); ok {
		v.Path = path
	}
}
