// Package card renders member identity cards as print-ready PDF documents.
package card

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"

	"github.com/firstcare-health/member-registry/internal/artifacts"
	"github.com/firstcare-health/member-registry/internal/logging"
	"github.com/firstcare-health/member-registry/internal/qrpayload"
	"github.com/firstcare-health/member-registry/internal/registry"
)

const (
	contentType = "application/pdf"
	imgPhoto    = "photo"
	imgLogo     = "logo"
	imgQR       = "qr"
	dateFormat  = "02 Jan 2006"
)

// Document is a rendered card.
type Document struct {
	Filename         string
	ContentType      string
	Data             []byte
	Pages            int
	PhotoPlaceholder bool
}

// Renderer lays out cards according to a Layout.
type Renderer struct {
	layout     Layout
	logoPath   string
	logger     *slog.Logger
	uncompress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogoPath draws the image at path in the header band when it loads.
func WithLogoPath(path string) Option {
	return func(r *Renderer) { r.logoPath = path }
}

// WithLogger sets the logger used to report degraded renders.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithoutCompression writes plain content streams, for inspection in tests.
func WithoutCompression() Option {
	return func(r *Renderer) { r.uncompress = true }
}

// NewRenderer validates the layout and builds a Renderer.
func NewRenderer(layout Layout, opts ...Option) (*Renderer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{layout: layout, logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Layout returns the renderer's layout.
func (r *Renderer) Layout() Layout {
	return r.layout
}

type assets struct {
	photo []byte
	logo  []byte
	qr    []byte
}

// prepare loads the photo and logo and encodes the QR code concurrently.
// Only the QR code is required; image failures leave the slot empty.
func (r *Renderer) prepare(ctx context.Context, reg registry.Registrant) (assets, error) {
	var (
		a assets
		g errgroup.Group
	)
	g.Go(func() error {
		w, h := r.layout.photoPixels()
		photo, err := photoPNG(reg.PhotoPath, w, h)
		if err != nil {
			if reg.PhotoPath != "" {
				r.logger.WarnContext(ctx, "card photo unavailable, using placeholder",
					slog.String("registration_id", reg.RegistrationID),
					slog.String("photo_path", reg.PhotoPath),
					slog.Any("error", err))
			}
			return nil
		}
		a.photo = photo
		return nil
	})
	g.Go(func() error {
		if r.logoPath == "" {
			return nil
		}
		logo, err := logoPNG(r.logoPath, 160, 160)
		if err != nil {
			r.logger.DebugContext(ctx, "card logo unavailable", slog.String("path", r.logoPath), slog.Any("error", err))
			return nil
		}
		a.logo = logo
		return nil
	})
	g.Go(func() error {
		qr, err := qrpayload.Encode(qrpayload.Build(reg), r.layout.QRPixels)
		if err != nil {
			return err
		}
		a.qr = qr
		return nil
	})
	if err := g.Wait(); err != nil {
		return assets{}, err
	}
	return a, ctx.Err()
}

// Render produces the card document for reg. A missing or unreadable photo
// degrades to the placeholder; any other failure aborts the render.
func (r *Renderer) Render(ctx context.Context, reg registry.Registrant) (Document, error) {
	a, err := r.prepare(ctx, reg)
	if err != nil {
		return Document{}, fmt.Errorf("prepare card assets: %w", err)
	}

	l := r.layout
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.Width, Ht: l.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(!r.uncompress)
	pdf.SetTitle("Member card "+reg.RegistrationID, true)
	pdf.SetCreator(l.Branding.OrgName, true)
	pdf.SetCreationDate(reg.IssueDate)

	p := &painter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), layout: l}
	p.registerImage(imgQR, a.qr)
	p.registerImage(imgPhoto, a.photo)
	p.registerImage(imgLogo, a.logo)

	p.front(reg, a.photo != nil, a.logo != nil)
	pages := 1
	if l.Pages == FrontAndBack {
		p.back(reg)
		pages++
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render card: %w", err)
	}

	return Document{
		Filename:         artifacts.CardName(reg.RegistrationID),
		ContentType:      contentType,
		Data:             buf.Bytes(),
		Pages:            pages,
		PhotoPlaceholder: a.photo == nil,
	}, nil
}

type painter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	layout Layout
}

func (p *painter) registerImage(name string, data []byte) {
	if data == nil {
		return
	}
	p.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
}

func (p *painter) image(name string, b Box) {
	p.pdf.ImageOptions(name, b.X, b.Y, b.W, b.H, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (p *painter) fill(c Color)  { p.pdf.SetFillColor(c.R, c.G, c.B) }
func (p *painter) color(c Color) { p.pdf.SetTextColor(c.R, c.G, c.B) }

func (p *painter) rect(b Box, c Color) {
	p.fill(c)
	p.pdf.Rect(b.X, b.Y, b.W, b.H, "F")
}

// text draws s at baseline y, trimmed so it ends before maxX.
func (p *painter) text(x, y, maxX float64, style string, size float64, s string) {
	p.pdf.SetFont(p.layout.FontFamily, style, size)
	if p.pdf.Err() {
		return
	}
	s = p.tr(s)
	if maxX > x {
		s = p.fit(s, maxX-x)
	}
	p.pdf.Text(x, y, s)
}

func (p *painter) fit(s string, width float64) string {
	if p.pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && p.pdf.GetStringWidth(s+ellipsis) > width {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}

func (p *painter) page() {
	l := p.layout
	p.pdf.AddPage()
	p.rect(Box{W: l.Width, H: l.Height}, l.Background)
	p.rect(l.HeaderBand, l.BandFill)
	p.rect(l.FooterBand, l.BandFill)
}

func (p *painter) front(reg registry.Registrant, hasPhoto, hasLogo bool) {
	l := p.layout
	b := l.Branding
	p.page()

	right := l.Width - 7
	if hasLogo {
		p.image(imgLogo, l.Logo)
		right = l.Logo.X - 4
	}
	p.color(l.BandText)
	p.text(7, l.HeaderBand.Y+12, right, "B", 8, b.OrgName)
	p.text(7, l.HeaderBand.Y+21, right, "", 6, b.Subtitle)

	if hasPhoto {
		p.image(imgPhoto, l.Photo)
	} else {
		p.placeholder()
	}

	maxX := l.QR.X - 3
	p.color(l.BodyText)
	y := l.TextTop
	p.text(l.TextX, y, maxX, "B", 7, strings.ToUpper(reg.LastName))
	lines := []string{
		strings.ToUpper(strings.TrimSpace(reg.FirstName + " " + reg.MiddleName)),
		"DOB: " + reg.DateOfBirth,
		"SEX: " + reg.Sex,
		"PHONE: " + reg.PhoneNumber,
		"NIN: " + reg.NIN,
		"ZONE/UNIT: " + reg.Zone + " / " + reg.Unit,
	}
	for _, line := range lines {
		y += l.LineHeight
		p.text(l.TextX, y, maxX, "", 6, line)
	}

	p.image(imgQR, l.QR)

	y = l.RegBlockTop
	regLines := []string{
		"Registration ID: " + reg.RegistrationID,
		"Issue Date: " + reg.IssueDate.Format(dateFormat),
		"Expires: " + reg.ExpiryDate.Format(dateFormat),
	}
	for _, line := range regLines {
		p.text(l.RegBlockX, y, l.Width-7, "B", 6, line)
		y += l.LineHeight
	}

	p.status(reg.RegistrationFeePaid, l.RegBlockX, y)
	p.footer(b.ContactLine, strings.Join(b.ReturnAddress, ", "))
}

// status is the only state-dependent element: paid or pending.
func (p *painter) status(paid bool, x, y float64) {
	l := p.layout
	if paid {
		p.color(l.StatusPaid)
		p.text(x, y, l.Width-7, "B", 6, "Status: ACTIVE")
		return
	}
	p.color(l.StatusPending)
	p.text(x, y, l.Width-7, "B", 6, "Status: PENDING")
}

func (p *painter) placeholder() {
	l := p.layout
	ph := l.Placeholder
	box := l.Photo

	p.fill(ph.Fill)
	p.pdf.SetDrawColor(ph.Border.R, ph.Border.G, ph.Border.B)
	p.pdf.SetLineWidth(0.5)
	if ph.Dashed {
		p.pdf.SetDashPattern([]float64{2, 1}, 0)
	}
	p.pdf.Rect(box.X, box.Y, box.W, box.H, "FD")
	p.pdf.SetDashPattern([]float64{}, 0)

	p.color(ph.Border)
	p.pdf.SetFont(l.FontFamily, "B", 5)
	if p.pdf.Err() {
		return
	}
	label := p.tr(ph.Text)
	w := p.pdf.GetStringWidth(label)
	p.pdf.Text(box.X+(box.W-w)/2, box.Y+box.H/2+2, label)
}

func (p *painter) footer(lines ...string) {
	l := p.layout
	p.color(l.BandText)
	y := l.FooterBand.Y + 7
	for _, line := range lines {
		if line == "" {
			continue
		}
		p.text(7, y, l.Width-7, "", 5, line)
		y += 6.5
	}
}

func (p *painter) back(reg registry.Registrant) {
	l := p.layout
	b := l.Branding
	p.page()

	p.color(l.BandText)
	p.text(7, l.HeaderBand.Y+16, l.Width-7, "B", 8, b.BackTitle)

	p.color(l.BodyText)
	y := l.HeaderBand.Y + l.HeaderBand.H + 10
	lines := []string{
		"Address: " + reg.Address,
		"State: " + reg.State,
		"LGA: " + reg.LGA,
		"Emergency: " + reg.EmergencyContactName,
		"Phone: " + reg.EmergencyContactPhone,
	}
	if reg.Beneficiary1.Name != "" {
		lines = append(lines, "Beneficiary: "+reg.Beneficiary1.Name+" ("+reg.Beneficiary1.Relationship+")")
	}
	for _, line := range lines {
		p.text(7, y, l.Width-7, "", 6, line)
		y += l.LineHeight
	}

	y += 3
	p.text(7, y, l.Width-7, "B", 6, "Return to:")
	for _, line := range b.ReturnAddress {
		y += 6.5
		p.text(7, y, l.Width-7, "", 5, line)
	}

	p.footer(b.ContactLine)
}
