package image_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"gatherguru/pkg/image"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func dataURL(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{name: "png", in: dataURL("image/png", pngHeader)},
		{name: "not a data url", in: "hello", err: image.ErrNotDataURL},
		{name: "plain text mime", in: dataURL("text/plain", []byte("hi")), err: image.ErrNotImage},
		{name: "image mime with text body", in: dataURL("image/png", []byte("just words here")), err: image.ErrNotImage},
		{name: "bad base64", in: "data:image/png;base64,@@@", err: image.ErrNotDataURL},
		{
			name: "too large",
			in:   dataURL("image/png", append(pngHeader, bytes.Repeat([]byte{0}, image.MaxSize)...)),
			err:  image.ErrTooLarge,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := image.Validate(test.in)
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.err)
		})
	}
}
