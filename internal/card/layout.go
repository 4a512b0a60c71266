package card

import (
	"errors"
	"fmt"
)

// Pages selects which sides of the card are rendered.
type Pages string

const (
	FrontOnly    Pages = "front_only"
	FrontAndBack Pages = "front_and_back"
)

// ParsePages validates a page configuration value.
func ParsePages(s string) (Pages, error) {
	switch p := Pages(s); p {
	case FrontOnly, FrontAndBack:
		return p, nil
	default:
		return "", fmt.Errorf("unknown card pages %q", s)
	}
}

// ErrInvalidGeometry is returned for layouts whose regions fall off the page.
var ErrInvalidGeometry = errors.New("invalid card geometry")

// Color is an RGB triple in 0..255.
type Color struct{ R, G, B int }

// Box is a rectangle in points with a top-left origin.
type Box struct{ X, Y, W, H float64 }

func (b Box) within(w, h float64) bool {
	return b.W > 0 && b.H > 0 && b.X >= 0 && b.Y >= 0 && b.X+b.W <= w && b.Y+b.H <= h
}

// Placeholder styles the photo region when no usable photo exists.
type Placeholder struct {
	Fill   Color
	Border Color
	Text   string
	Dashed bool
}

// Branding holds organisation text printed on the card.
type Branding struct {
	OrgName       string
	Subtitle      string
	BackTitle     string
	ContactLine   string
	ReturnAddress []string
}

// Layout is every constant the renderer needs. All lengths are points.
type Layout struct {
	Width  float64
	Height float64
	Pages  Pages

	FontFamily string
	Background Color
	BandFill   Color
	BandText   Color
	BodyText   Color

	HeaderBand Box
	FooterBand Box
	Logo       Box
	Photo      Box
	QR         Box

	// Text block lines start at TextTop, to the right of the photo.
	TextX      float64
	TextTop    float64
	LineHeight float64

	RegBlockX   float64
	RegBlockTop float64

	StatusPaid    Color
	StatusPending Color

	Placeholder Placeholder
	Branding    Branding

	// PhotoDPI and QRPixels control raster resolution of embedded images.
	PhotoDPI float64
	QRPixels int
}

// DefaultLayout is a 3.375in x 2.125in (ID-1) card.
func DefaultLayout() Layout {
	const w, h = 243.0, 153.0
	return Layout{
		Width:      w,
		Height:     h,
		Pages:      FrontAndBack,
		FontFamily: "Helvetica",
		Background: Color{204, 242, 204},
		BandFill:   Color{0, 128, 0},
		BandText:   Color{255, 255, 255},
		BodyText:   Color{0, 0, 0},

		HeaderBand: Box{X: 0, Y: 0, W: w, H: 28},
		FooterBand: Box{X: 0, Y: 133, W: w, H: 20},
		Logo:       Box{X: 215, Y: 4, W: 20, H: 20},
		Photo:      Box{X: 7.2, Y: 32, W: 43.2, H: 57.6},
		QR:         Box{X: 192.6, Y: 32, W: 43.2, H: 43.2},

		TextX:      57.6,
		TextTop:    40,
		LineHeight: 7.2,

		RegBlockX:   7.2,
		RegBlockTop: 100,

		StatusPaid:    Color{0, 128, 0},
		StatusPending: Color{204, 0, 0},

		Placeholder: Placeholder{
			Fill:   Color{235, 235, 235},
			Border: Color{128, 128, 128},
			Text:   "NO PHOTO",
			Dashed: true,
		},
		Branding: Branding{
			OrgName:     "FIRSTCARE HEALTH PARTNERS",
			Subtitle:    "MEMBER ID CARD",
			BackTitle:   "MEMBER INFORMATION",
			ContactLine: "admin@firstcaregroup.com",
			ReturnAddress: []string{
				"Firstcare Health Partners",
				"No 6, Yusuf Mohammed street,",
				"Narayi Highcost, Barnawa, Kaduna",
			},
		},

		PhotoDPI: 300,
		QRPixels: 256,
	}
}

// Validate checks that every region fits on the page.
func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: page %vx%v", ErrInvalidGeometry, l.Width, l.Height)
	}
	if _, err := ParsePages(string(l.Pages)); err != nil {
		return err
	}
	regions := map[string]Box{
		"header": l.HeaderBand,
		"footer": l.FooterBand,
		"photo":  l.Photo,
		"qr":     l.QR,
	}
	for name, b := range regions {
		if !b.within(l.Width, l.Height) {
			return fmt.Errorf("%w: %s region %+v", ErrInvalidGeometry, name, b)
		}
	}
	if l.TextX <= 0 || l.TextX >= l.QR.X || l.LineHeight <= 0 {
		return fmt.Errorf("%w: text block at x=%v", ErrInvalidGeometry, l.TextX)
	}
	return nil
}

func (l Layout) photoPixels() (int, int) {
	dpi := l.PhotoDPI
	if dpi <= 0 {
		dpi = 300
	}
	return int(l.Photo.W / 72 * dpi), int(l.Photo.H / 72 * dpi)
}
