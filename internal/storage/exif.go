package storage

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// ExtractEXIF pulls a small set of EXIF fields from image bytes for the
// photo metadata blob. Media without usable EXIF yields nil.
func ExtractEXIF(content []byte) map[string]any {
	x, err := exif.Decode(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	meta := map[string]any{}
	if tag, err := x.Get(exif.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			meta["camera_make"] = strings.TrimSpace(v)
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			meta["camera_model"] = strings.TrimSpace(v)
		}
	}
	if taken, err := x.DateTime(); err == nil {
		meta["taken_at"] = taken.Format(time.RFC3339)
	}
	if lat, lon, err := x.LatLong(); err == nil {
		meta["gps_latitude"] = lat
		meta["gps_longitude"] = lon
	}

	if len(meta) == 0 {
		return nil
	}
	return meta
}
