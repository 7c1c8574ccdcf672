package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/tsawler/vellum/core"
	"github.com/tsawler/vellum/pages"
)

// PageImage is an image XObject extracted from a page.
type PageImage struct {
	Name             string // XObject resource name, e.g. "Im1"
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int
	Filter           string // first declared filter
	Data             []byte // decoded pixel data
}

// ExtractPageImages extracts every image XObject from a page's resources,
// with decoded pixel data. Images that fail to decode are skipped with a
// warning.
func (r *Reader) ExtractPageImages(page *pages.Page) ([]PageImage, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}

	xobjectObj := resources.Get("XObject")
	if xobjectObj == nil {
		return nil, nil
	}
	xobjectResolved, err := r.Resolve(xobjectObj)
	if err != nil {
		return nil, fmt.Errorf("resolve XObject dictionary: %w", err)
	}
	xobjects, ok := xobjectResolved.(core.Dict)
	if !ok {
		return nil, nil
	}

	var images []PageImage
	for _, name := range xobjects.Keys() {
		resolved, err := r.Resolve(xobjects.Get(name))
		if err != nil {
			r.Warn(WarnMissing, "xobject %s: %v", name, err)
			continue
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Image" {
			continue
		}

		img, err := r.extractImage(name, stream)
		if err != nil {
			r.Warn(WarnFilter, "image %s: %v", name, err)
			continue
		}
		images = append(images, *img)
	}

	return images, nil
}

// extractImage pulls the attributes and decoded payload of one image
// stream.
func (r *Reader) extractImage(name string, stream *core.Stream) (*PageImage, error) {
	dict := stream.Dict

	width, ok := dict.GetInt("Width")
	if !ok {
		return nil, fmt.Errorf("image missing /Width")
	}
	height, ok := dict.GetInt("Height")
	if !ok {
		return nil, fmt.Errorf("image missing /Height")
	}

	bpc := 8
	if v, ok := dict.GetInt("BitsPerComponent"); ok {
		bpc = int(v)
	}

	colorSpace := "DeviceGray"
	if csObj := dict.Get("ColorSpace"); csObj != nil {
		colorSpace = r.colorSpaceName(csObj)
	}

	filter := ""
	if names := stream.Filters(); len(names) > 0 {
		filter = names[0]
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode image stream: %w", err)
	}

	return &PageImage{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       colorSpace,
		BitsPerComponent: bpc,
		Filter:           filter,
		Data:             data,
	}, nil
}

// colorSpaceName reduces a color space object to a family name.
func (r *Reader) colorSpaceName(obj core.Object) string {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return "DeviceGray"
	}

	switch v := resolved.(type) {
	case core.Name:
		return string(v)
	case core.Array:
		if name, ok := v.GetName(0); ok {
			switch string(name) {
			case "Indexed":
				if len(v) > 1 {
					return r.colorSpaceName(v[1])
				}
			case "ICCBased":
				return "ICCBased"
			}
			return string(name)
		}
	}
	return "DeviceGray"
}

// ToPNG converts the decoded pixel data to PNG, for export or OCR.
func (img *PageImage) ToPNG() ([]byte, error) {
	var goImg image.Image
	var err error

	switch img.ColorSpace {
	case "DeviceRGB", "CalRGB":
		goImg, err = img.toRGBImage()
	case "DeviceCMYK":
		goImg, err = img.toCMYKImage()
	default:
		goImg, err = img.toGrayImage()
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// toGrayImage handles 1-, 4-, and 8-bit grayscale data.
func (img *PageImage) toGrayImage() (*image.Gray, error) {
	switch img.BitsPerComponent {
	case 1:
		return img.toBilevelGray()
	case 4:
		return img.to4BitGray()
	case 8:
		goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		expected := img.Width * img.Height
		if len(img.Data) < expected {
			return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(img.Data), expected)
		}
		copy(goImg.Pix, img.Data[:expected])
		return goImg, nil
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}
}

// toBilevelGray expands 1-bit rows, MSB first; 0 renders black.
func (img *PageImage) toBilevelGray() (*image.Gray, error) {
	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))

	bytesPerRow := (img.Width + 7) / 8
	expected := bytesPerRow * img.Height
	if len(img.Data) < expected {
		return nil, fmt.Errorf("insufficient data for 1-bit image: got %d, expected %d", len(img.Data), expected)
	}

	for y := 0; y < img.Height; y++ {
		rowStart := y * bytesPerRow
		for x := 0; x < img.Width; x++ {
			bit := (img.Data[rowStart+x/8] >> (7 - x%8)) & 1
			if bit == 0 {
				goImg.Pix[y*img.Width+x] = 0
			} else {
				goImg.Pix[y*img.Width+x] = 255
			}
		}
	}
	return goImg, nil
}

// to4BitGray expands 4-bit rows, high nibble first.
func (img *PageImage) to4BitGray() (*image.Gray, error) {
	goImg := image.NewGray(image.Rect(0, 0, img.Width, img.Height))

	bytesPerRow := (img.Width + 1) / 2
	expected := bytesPerRow * img.Height
	if len(img.Data) < expected {
		return nil, fmt.Errorf("insufficient data for 4-bit image: got %d, expected %d", len(img.Data), expected)
	}

	for y := 0; y < img.Height; y++ {
		rowStart := y * bytesPerRow
		for x := 0; x < img.Width; x++ {
			var nibble byte
			if x%2 == 0 {
				nibble = img.Data[rowStart+x/2] >> 4
			} else {
				nibble = img.Data[rowStart+x/2] & 0x0F
			}
			goImg.Pix[y*img.Width+x] = nibble * 17
		}
	}
	return goImg, nil
}

// toRGBImage converts 8-bit RGB samples.
func (img *PageImage) toRGBImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported bits per component for RGB: %d", img.BitsPerComponent)
	}

	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	expected := img.Width * img.Height * 3
	if len(img.Data) < expected {
		return nil, fmt.Errorf("insufficient data for RGB image: got %d, expected %d", len(img.Data), expected)
	}

	for i := 0; i < img.Width*img.Height; i++ {
		goImg.Pix[i*4+0] = img.Data[i*3+0]
		goImg.Pix[i*4+1] = img.Data[i*3+1]
		goImg.Pix[i*4+2] = img.Data[i*3+2]
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}

// toCMYKImage converts 8-bit CMYK samples to RGBA.
func (img *PageImage) toCMYKImage() (*image.RGBA, error) {
	if img.BitsPerComponent != 8 {
		return nil, fmt.Errorf("unsupported bits per component for CMYK: %d", img.BitsPerComponent)
	}

	goImg := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	expected := img.Width * img.Height * 4
	if len(img.Data) < expected {
		return nil, fmt.Errorf("insufficient data for CMYK image: got %d, expected %d", len(img.Data), expected)
	}

	for i := 0; i < img.Width*img.Height; i++ {
		r, g, b := color.CMYKToRGB(img.Data[i*4+0], img.Data[i*4+1], img.Data[i*4+2], img.Data[i*4+3])
		goImg.Pix[i*4+0] = r
		goImg.Pix[i*4+1] = g
		goImg.Pix[i*4+2] = b
		goImg.Pix[i*4+3] = 255
	}
	return goImg, nil
}
