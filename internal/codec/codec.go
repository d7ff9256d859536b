// Package codec turns opaque byte buffers into canonical BGR rasters. It is
// the only place raw uploads are parsed; everything downstream works on mats.
package codec

import (
	"gocv.io/x/gocv"

	apperrors "go-id-verifier/internal/errors"
)

// Decode parses raw bytes into a 3-channel BGR mat. A buffer that no
// supported raster format can parse fails fast with a decode error; nothing
// past this point sees the raw bytes. On error the returned mat is a zero
// handle that owns no pixel data; callers must not use or Close it.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, apperrors.NewDecodeError("empty image buffer", nil)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, apperrors.NewDecodeError("failed to decode image", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, apperrors.NewDecodeError("byte stream is not a supported image format", nil)
	}
	return mat, nil
}

// Encode serializes a mat to PNG bytes, the interchange format handed to the
// OCR engine.
func Encode(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode image", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
