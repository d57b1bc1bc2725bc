package media

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// GPSExtractor pulls GPS coordinates out of image bytes. Implementations
// never fail; ok=false means the image carries no usable position.
type GPSExtractor interface {
	ExtractGPS(data []byte) (lat, lng float64, ok bool)
}

// ExifExtractor reads EXIF GPS tags.
type ExifExtractor struct{}

// NewExifExtractor constructs the extractor.
func NewExifExtractor() *ExifExtractor {
	return &ExifExtractor{}
}

// ExtractGPS decodes the EXIF block and returns decimal-degree coordinates.
// Any decode or tag problem yields ok=false.
func (e *ExifExtractor) ExtractGPS(data []byte) (float64, float64, bool) {
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	lat, lng, err := meta.LatLong()
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
