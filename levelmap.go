package levelgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/boljen/go-bitmap"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"

	"github.com/voidshard/levelgen/internal/encoding"
)

const (
	// bit numbers for our bitmap
	bitRoad       = 0
	bitSideRoad   = 1
	bitRestricted = 2
	bitSoft       = 3
	bitSolid      = 4

	// refuse to allocate maps larger than this
	maxMapPixels = 1 << 26
)

// LevelMap is a raster of a Level, handy for debugging & for games that want
// a quick "what is here" lookup per pixel.
//
// Pixel (0,0) is the top left of the level (min X, max Y).
type LevelMap interface {
	// Save as custom file in a format defined by the library
	Save(fpath string) error

	// SaveAdv saves as an image with the given color scheme
	SaveAdv(fpath string, scheme *ColourScheme) error

	// CustomImage returns an image with the given color scheme
	CustomImage(scheme *ColourScheme) (image.Image, error)

	IsRoad(x, y int) bool
	IsSideRoad(x, y int) bool
	IsRestricted(x, y int) bool

	// IsSoft returns if there is a soft (trigger) instance at x,y.
	// Roads are always soft.
	IsSoft(x, y int) bool

	// Category returns the category drawn at x,y ("" if nothing)
	Category(x, y int) (Category, error)

	// InstanceID returns the Instance.ID drawn at x,y. A value of 0
	// indicates that there is no instance.
	InstanceID(x, y int) (int, error)

	// ToPixel converts a world position to pixel co-ords
	ToPixel(p r2.Point) image.Point

	// ToWorld returns the world position of the centre of pixel x,y
	ToWorld(x, y int) r2.Point
}

// imageMap is a particular implementation of LevelMap using a RGBA64
type imageMap struct {
	// im holds one encoding.Pixel per pixel
	im *image.RGBA64

	// scratch image. We draw shapes with a drawing lib because it's far
	// easier than rasterising rotated polygons & capsules ourselves, then
	// transfer the result into im with endDraw()
	ctx *gg.Context

	world r2.Rect
	scale float64

	// categories by index, pixel category 0 is reserved for nothing
	categories []Category
	index      map[Category]uint16
}

// ColourScheme defines how various features in a level should be coloured.
type ColourScheme struct {
	Background color.Color
	Roads      color.Color
	SideRoads  color.Color
	Restricted color.Color

	// Categories colours instances, anything not listed gets Default
	Categories map[Category]color.Color
	Default    color.Color
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Background: colornames.Wheat,
		Roads:      colornames.Dimgray,
		SideRoads:  colornames.Darkgray,
		Restricted: colornames.Crimson,
		Categories: map[Category]color.Color{
			Building: colornames.Saddlebrown,
			Tree:     colornames.Forestgreen,
			Asset:    colornames.Steelblue,
			Pickup:   colornames.Gold,
		},
		Default: colornames.Black,
	}
}

// newLevelMap draws the level at scale pixels per world unit
func newLevelMap(l *Level, scale float64) (*imageMap, error) {
	if scale <= 0 || math.IsNaN(scale) {
		return nil, fmt.Errorf("map scale must be > 0, got %f", scale)
	}

	size := l.Bounds.Size()
	w := int(math.Ceil(size.X * scale))
	h := int(math.Ceil(size.Y * scale))
	if w <= 0 || h <= 0 || w*h > maxMapPixels {
		return nil, fmt.Errorf("map of %dx%d pixels is not supported", w, h)
	}

	c := newMap(image.Rect(0, 0, w, h), l.Bounds, scale)
	for _, cat := range l.reg.Categories() {
		c.categoryIndex(cat)
	}

	// roads go first, everything else is drawn over them
	for _, seg := range l.Roads.Segments {
		bm := bitmap.New(8)
		bm.Set(bitRoad, true)
		bm.Set(bitSoft, true)
		if seg.Side {
			bm.Set(bitSideRoad, true)
		}
		err := c.drawShape(seg.Shape())
		if err != nil {
			return nil, errors.Wrapf(err, "drawing road tile at %v", seg.Position)
		}
		c.endDraw(c.pixelArea(seg.Bounds()), Road, 0, bm)
	}

	if l.Restricted != nil {
		bm := bitmap.New(8)
		bm.Set(bitRestricted, true)
		bm.Set(bitSolid, true)
		zone := NewBox(l.Restricted.X.Length(), l.Restricted.Y.Length()).At(l.Restricted.Center())
		err := c.drawShape(zone)
		if err != nil {
			return nil, errors.Wrap(err, "drawing restricted zone")
		}
		c.endDraw(c.pixelArea(*l.Restricted), Restricted, 0, bm)
	}

	instances := make([]*Instance, len(l.Instances))
	copy(instances, l.Instances)
	sort.SliceStable(instances, func(a, b int) bool {
		return priority(instances[a].Category) < priority(instances[b].Category)
	})

	for _, inst := range instances {
		bm := bitmap.New(8)
		if soft(l.cfg.Layers, inst.Category) {
			bm.Set(bitSoft, true)
		} else {
			bm.Set(bitSolid, true)
		}
		err := c.drawShape(inst.Shape)
		if err != nil {
			return nil, errors.Wrapf(err, "drawing instance %d", inst.ID)
		}
		c.endDraw(c.pixelArea(inst.Shape.Bounds()), inst.Category, inst.ID, bm)
	}

	return c, nil
}

// Save the LevelMap as is to disk
func (c *imageMap) Save(fpath string) error {
	return savePNG(fpath, c.im)
}

// CustomImage returns the LevelMap coloured with the given Scheme
func (c *imageMap) CustomImage(scheme *ColourScheme) (image.Image, error) {
	if scheme == nil {
		scheme = DefaultScheme()
	}

	bnds := c.im.Bounds()
	im := image.NewRGBA(bnds)

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			px := encoding.Decode(c.im.RGBA64At(dx, dy))
			bm := bitmap.Bitmap([]byte{px.Flags})

			if px.ID != 0 {
				cat := c.category(px.Category)
				col, ok := scheme.Categories[cat]
				if !ok {
					col = scheme.Default
				}
				setColour(im, dx, dy, col)
				continue
			}

			if bm.Get(bitRestricted) {
				setColour(im, dx, dy, scheme.Restricted)
			} else if bm.Get(bitSideRoad) && scheme.SideRoads != nil {
				setColour(im, dx, dy, scheme.SideRoads)
			} else if bm.Get(bitRoad) {
				setColour(im, dx, dy, scheme.Roads)
			} else {
				setColour(im, dx, dy, scheme.Background)
			}
		}
	}

	return im, nil
}

// SaveAdv essentially saves the LevelMap using the given scheme to disk.
// Essentially sugar around "CustomImage()" followed by writing out a PNG.
func (c *imageMap) SaveAdv(fpath string, scheme *ColourScheme) error {
	im, err := c.CustomImage(scheme)
	if err != nil {
		return err
	}
	ctx := gg.NewContextForRGBA(im.(*image.RGBA))
	return ctx.SavePNG(fpath)
}

// Category returns the category at x,y
func (c *imageMap) Category(x, y int) (Category, error) {
	if c.isOutOfBounds(x, y) {
		return "", fmt.Errorf("(%d,%d) is out of bounds", x, y)
	}
	return c.category(encoding.Decode(c.im.RGBA64At(x, y)).Category), nil
}

// InstanceID returns the instance id at x,y
func (c *imageMap) InstanceID(x, y int) (int, error) {
	if c.isOutOfBounds(x, y) {
		return -1, fmt.Errorf("(%d,%d) is out of bounds", x, y)
	}
	return int(encoding.Decode(c.im.RGBA64At(x, y)).ID), nil
}

// IsRoad returns if there is a road at x,y
func (c *imageMap) IsRoad(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitRoad)
}

// IsSideRoad returns if there is a side road at x,y
func (c *imageMap) IsSideRoad(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitSideRoad)
}

// IsRestricted returns if x,y is in the restricted zone
func (c *imageMap) IsRestricted(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitRestricted)
}

// IsSoft returns if x,y holds something soft
func (c *imageMap) IsSoft(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitSoft)
}

// ToPixel converts world co-ords to pixel co-ords
func (c *imageMap) ToPixel(p r2.Point) image.Point {
	return image.Pt(
		int(math.Floor((p.X-c.world.X.Lo)*c.scale)),
		int(math.Floor((c.world.Y.Hi-p.Y)*c.scale)),
	)
}

// ToWorld converts pixel co-ords to the world position of the pixel centre
func (c *imageMap) ToWorld(x, y int) r2.Point {
	return r2.Point{
		X: c.world.X.Lo + (float64(x)+0.5)/c.scale,
		Y: c.world.Y.Hi - (float64(y)+0.5)/c.scale,
	}
}

// category returns the category for a pixel category index
func (c *imageMap) category(i uint16) Category {
	if i == 0 || int(i) > len(c.categories) {
		return ""
	}
	return c.categories[i-1]
}

// categoryIndex returns (assigning if needed) the pixel index of a category
func (c *imageMap) categoryIndex(cat Category) uint16 {
	i, ok := c.index[cat]
	if ok {
		return i
	}
	c.categories = append(c.categories, cat)
	i = uint16(len(c.categories))
	c.index[cat] = i
	return i
}

// getBM gets the 8 bit bitmap at x,y
func (c *imageMap) getBM(x, y int) bitmap.Bitmap {
	px := encoding.Decode(c.im.RGBA64At(x, y))
	return bitmap.Bitmap([]byte{px.Flags})
}

// isOutOfBounds determines if x,y is outside of the image area
func (c *imageMap) isOutOfBounds(x, y int) bool {
	bnds := c.im.Bounds()
	return x < bnds.Min.X || x >= bnds.Max.X || y < bnds.Min.Y || y >= bnds.Max.Y
}

// pixelArea returns the pixels covered by a world rect, clipped to the map
func (c *imageMap) pixelArea(r r2.Rect) image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	tl := c.ToPixel(r2.Point{X: r.X.Lo, Y: r.Y.Hi})
	br := c.ToPixel(r2.Point{X: r.X.Hi, Y: r.Y.Lo})
	return image.Rect(tl.X-1, tl.Y-1, br.X+2, br.Y+2).Intersect(c.im.Bounds())
}

// drawShape fills a shape on to our scratch image
func (c *imageMap) drawShape(s Shape) error {
	prims, err := s.Primitives()
	if err != nil {
		return err
	}

	c.ctx.SetColor(color.RGBA{255, 0, 0, 255})
	for _, p := range prims {
		fpts := make([]r2.Point, len(p.Points))
		for i, pt := range p.Points {
			fpts[i] = r2.Point{X: (pt.X - c.world.X.Lo) * c.scale, Y: (c.world.Y.Hi - pt.Y) * c.scale}
		}

		switch {
		case len(fpts) == 1:
			c.ctx.DrawCircle(fpts[0].X, fpts[0].Y, p.Radius*c.scale)
			c.ctx.Fill()
		case len(fpts) == 2:
			c.ctx.SetLineCapRound()
			c.ctx.SetLineWidth(2 * p.Radius * c.scale)
			c.ctx.DrawLine(fpts[0].X, fpts[0].Y, fpts[1].X, fpts[1].Y)
			c.ctx.Stroke()
		default:
			c.ctx.MoveTo(fpts[0].X, fpts[0].Y)
			for _, pt := range fpts[1:] {
				c.ctx.LineTo(pt.X, pt.Y)
			}
			c.ctx.ClosePath()
			c.ctx.Fill()
		}
	}

	return nil
}

// endDraw copies whatever we drew in area of the scratch image to our proper
// map then wipes the scratch area. Road bits already on the map are kept so
// objects drawn over roads still report the road beneath them.
func (c *imageMap) endDraw(area image.Rectangle, cat Category, id int, bm bitmap.Bitmap) {
	if area.Empty() {
		return
	}
	temp := c.ctx.Image().(*image.RGBA)
	catIdx := c.categoryIndex(cat)
	flags := bm.Data(true)[0]

	for dy := area.Min.Y; dy < area.Max.Y; dy++ {
		for dx := area.Min.X; dx < area.Max.X; dx++ {
			_, _, _, a := temp.At(dx, dy).RGBA()
			if a>>8 < 128 {
				continue
			}

			current := c.getBM(dx, dy)
			px := encoding.Pixel{Category: catIdx, ID: uint32(id), Flags: flags}
			if current.Get(bitRoad) {
				merged := bitmap.Bitmap([]byte{flags})
				merged.Set(bitRoad, true)
				merged.Set(bitSideRoad, current.Get(bitSideRoad))
				px.Flags = merged.Data(true)[0]
			}
			c.im.SetRGBA64(dx, dy, encoding.Encode(px))
		}
	}

	draw.Draw(temp, area, image.Transparent, image.Point{}, draw.Src)
}

// setColour sets x,y to col if col is set
func setColour(im *image.RGBA, x, y int, col color.Color) {
	if col == nil {
		return
	}
	im.Set(x, y, col)
}

// newMap returns a new map with the given pixel bounds covering world
func newMap(bounds image.Rectangle, world r2.Rect, scale float64) *imageMap {
	ctx := gg.NewContextForRGBA(image.NewRGBA(bounds))
	ctx.SetRGBA(0, 0, 0, 0)
	ctx.Clear()

	return &imageMap{
		ctx:        ctx,
		im:         image.NewRGBA64(bounds),
		world:      world,
		scale:      scale,
		categories: []Category{},
		index:      map[Category]uint16{},
	}
}
