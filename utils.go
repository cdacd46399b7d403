package levelgen

import (
	"bytes"
	"image"
	"image/png"
	"io/ioutil"
)

// savePNG to disk
func savePNG(fpath string, in image.Image) error {
	buff := new(bytes.Buffer)
	err := png.Encode(buff, in)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fpath, buff.Bytes(), 0644)
}
