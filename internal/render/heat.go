// Package render rasterizes heat layers into preview images.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/heatlayers/internal/geo"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// Defaults for zero Options fields.
const (
	DefaultWidth   = 1024
	DefaultRadius  = 25
	DefaultCell    = 4
	DefaultQuality = 85
)

// Options control the snapshot geometry.
type Options struct {
	Width      int     // output width in pixels, height follows the box aspect
	Radius     float64 // splat radius in output pixels
	Cell       int     // size of a density cell in output pixels
	MinOpacity float64
}

func (o *Options) normalize() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Radius <= 0 {
		o.Radius = DefaultRadius
	}
	if o.Cell <= 0 {
		o.Cell = DefaultCell
	}
	if o.MinOpacity <= 0 {
		o.MinOpacity = 0.05
	}
	o.MinOpacity = min(o.MinOpacity, 1)
}

type stop struct {
	at float64
	c  color.NRGBA
}

// gradient matches the default Leaflet.heat palette.
var gradient = []stop{
	{0.4, color.NRGBA{0, 0, 255, 255}},
	{0.6, color.NRGBA{0, 255, 255, 255}},
	{0.7, color.NRGBA{0, 255, 0, 255}},
	{0.8, color.NRGBA{255, 255, 0, 255}},
	{1.0, color.NRGBA{255, 0, 0, 255}},
}

// Size returns the pixel size of a snapshot of box at the given width.
// Longitude is scaled by the cosine of the center latitude.
func Size(box geo.BoundingBox, width int) (int, int, error) {
	latSpan := box.Lat().Length()
	lngSpan := box.Lng().Length()
	if latSpan <= 0 || lngSpan <= 0 {
		return 0, 0, errors.New("bounding box has no area")
	}

	centerLat, _ := box.Center()
	aspect := latSpan / (lngSpan * math.Cos(centerLat*math.Pi/180))
	height := int(math.Round(float64(width) * aspect))
	if height < 1 {
		height = 1
	}

	return width, height, nil
}

// Heat accumulates the weights of points inside box into a density grid,
// colors it and scales it to the output size.
func Heat(points []geo.Point, box geo.BoundingBox, opts Options) (*image.RGBA, error) {
	opts.normalize()

	width, height, err := Size(box, opts.Width)
	if err != nil {
		return nil, err
	}

	gw := (width + opts.Cell - 1) / opts.Cell
	gh := (height + opts.Cell - 1) / opts.Cell
	density := make([]float64, gw*gh)
	r := opts.Radius / float64(opts.Cell)
	ri := int(math.Ceil(r))

	latSpan, lngSpan := box.Lat().Length(), box.Lng().Length()
	for _, p := range points {
		if !box.Contains(p) || p.Weight <= 0 {
			continue
		}

		cx := (p.Lng - box.MinLng) / lngSpan * float64(gw-1)
		cy := (box.MaxLat - p.Lat) / latSpan * float64(gh-1)

		for y := int(cy) - ri; y <= int(cy)+ri+1; y++ {
			if y < 0 || y >= gh {
				continue
			}
			for x := int(cx) - ri; x <= int(cx)+ri+1; x++ {
				if x < 0 || x >= gw {
					continue
				}
				d2 := (float64(x)-cx)*(float64(x)-cx) + (float64(y)-cy)*(float64(y)-cy)
				if d2 >= r*r {
					continue
				}
				density[y*gw+x] += p.Weight * (1 - d2/(r*r))
			}
		}
	}

	maxD := 0.0
	for _, d := range density {
		maxD = math.Max(maxD, d)
	}

	grid := image.NewNRGBA(image.Rect(0, 0, gw, gh))
	if maxD > 0 {
		for i, d := range density {
			if d == 0 {
				continue
			}
			v := d / maxD
			c := colorAt(v)
			c.A = uint8(255 * (opts.MinOpacity + v*(1-opts.MinOpacity)))
			grid.SetNRGBA(i%gw, i/gw, c)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), grid, grid.Bounds(), draw.Src, nil)

	return dst, nil
}

// Encode writes img as lossy WebP.
func Encode(w io.Writer, img image.Image, quality float32) error {
	if quality <= 0 {
		quality = DefaultQuality
	}

	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality})
}

func colorAt(v float64) color.NRGBA {
	if v <= gradient[0].at {
		return gradient[0].c
	}

	for i := 1; i < len(gradient); i++ {
		hi := gradient[i]
		if v > hi.at {
			continue
		}
		lo := gradient[i-1]
		f := (v - lo.at) / (hi.at - lo.at)

		return color.NRGBA{
			R: lerp(lo.c.R, hi.c.R, f),
			G: lerp(lo.c.G, hi.c.G, f),
			B: lerp(lo.c.B, hi.c.B, f),
			A: 255,
		}
	}

	return gradient[len(gradient)-1].c
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
