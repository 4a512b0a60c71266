package card

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var errNoImage = errors.New("no image path")

func decodeImage(path string) (img image.Image, err error) {
	if path == "" {
		return nil, errNoImage
	}
	// Decoders may panic on hostile input; treat that as a decode error.
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("decode %s: panic: %v", path, rec)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, openErr
		}
		defer f.Close()
		return webp.Decode(f)
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// photoPNG crops the photo at path to fill a w x h pixel box.
func photoPNG(path string, w, h int) ([]byte, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	return encodePNG(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos))
}

// logoPNG scales the logo at path to fit inside a w x h pixel box.
func logoPNG(path string, w, h int) ([]byte, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	return encodePNG(imaging.Fit(img, w, h, imaging.Lanczos))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
