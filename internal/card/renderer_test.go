package card

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstcare-health/member-registry/internal/registry"
)

func member() registry.Registrant {
	issued := time.Date(2024, 12, 9, 10, 30, 0, 0, time.UTC)
	return registry.Registrant{
		RegistrationID:        "FHP20241209ABCDEF12",
		FirstName:             "Amaka",
		MiddleName:            "Ifeoma",
		LastName:              "Obi",
		DateOfBirth:           "1992-04-18",
		Sex:                   "F",
		PhoneNumber:           "08031234567",
		NIN:                   "11122233344",
		Address:               "12 Ahmadu Bello Way",
		State:                 "Kaduna",
		LGA:                   "Kaduna North",
		Zone:                  "Kaduna Region",
		Unit:                  "Unit 4",
		EmergencyContactName:  "Chidi Obi",
		EmergencyContactPhone: "08039876543",
		Beneficiary1:          registry.Beneficiary{Name: "Ngozi Obi", Relationship: "Sibling"},
		MembershipStatus:      registry.StatusActive,
		IssueDate:             issued,
		CreatedAt:             issued,
		ExpiryDate:            issued.AddDate(0, 0, 365),
	}
}

func newRenderer(t *testing.T, mutate func(*Layout), opts ...Option) *Renderer {
	t.Helper()
	l := DefaultLayout()
	if mutate != nil {
		mutate(&l)
	}
	r, err := NewRenderer(l, append([]Option{WithoutCompression()}, opts...)...)
	require.NoError(t, err)
	return r
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func pageCount(data []byte) int {
	return bytes.Count(data, []byte("/Type /Page\n"))
}

func TestRenderWithoutPhotoUsesPlaceholder(t *testing.T) {
	doc, err := newRenderer(t, nil).Render(context.Background(), member())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
	assert.True(t, doc.PhotoPlaceholder)
	assert.Equal(t, "card_FHP20241209ABCDEF12.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Contains(t, string(doc.Data), "(NO PHOTO) Tj")
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, 2, pageCount(doc.Data))
}

func TestRenderMissingPhotoFileDegrades(t *testing.T) {
	m := member()
	m.PhotoPath = filepath.Join(t.TempDir(), "gone.jpg")

	doc, err := newRenderer(t, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, doc.PhotoPlaceholder)
	assert.NotEmpty(t, doc.Data)
}

func TestRenderCorruptPhotoDegrades(t *testing.T) {
	m := member()
	m.PhotoPath = filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(m.PhotoPath, []byte("\x89PNG not really"), 0o644))

	doc, err := newRenderer(t, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, doc.PhotoPlaceholder)
}

func TestRenderEmbedsPhoto(t *testing.T) {
	m := member()
	m.PhotoPath = filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, m.PhotoPath, 300, 500)

	doc, err := newRenderer(t, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, doc.PhotoPlaceholder)
	assert.NotContains(t, string(doc.Data), "(NO PHOTO) Tj")
}

func TestRenderEmbedsWebPPhoto(t *testing.T) {
	m := member()
	m.PhotoPath = filepath.Join(t.TempDir(), "photo.webp")
	img := image.NewRGBA(image.Rect(0, 0, 120, 160))
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, img, &webp.Options{Lossless: true}))
	require.NoError(t, os.WriteFile(m.PhotoPath, buf.Bytes(), 0o644))

	doc, err := newRenderer(t, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, doc.PhotoPlaceholder)
}

func TestRenderStatusFollowsFeePayment(t *testing.T) {
	r := newRenderer(t, nil)
	m := member()

	pending, err := r.Render(context.Background(), m)
	require.NoError(t, err)
	assert.Contains(t, string(pending.Data), "(Status: PENDING) Tj")
	assert.NotContains(t, string(pending.Data), "(Status: ACTIVE) Tj")

	m.RegistrationFeePaid = true
	active, err := r.Render(context.Background(), m)
	require.NoError(t, err)
	assert.Contains(t, string(active.Data), "(Status: ACTIVE) Tj")
	assert.NotContains(t, string(active.Data), "(Status: PENDING) Tj")
}

func TestRenderFrontOnly(t *testing.T) {
	r := newRenderer(t, func(l *Layout) { l.Pages = FrontOnly })
	doc, err := r.Render(context.Background(), member())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, 1, pageCount(doc.Data))
	assert.NotContains(t, string(doc.Data), "(MEMBER INFORMATION) Tj")
}

func TestRenderWithLogo(t *testing.T) {
	logo := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, logo, 64, 64)

	doc, err := newRenderer(t, nil, WithLogoPath(logo)).Render(context.Background(), member())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)

	// An unreadable logo is skipped rather than failing the card.
	doc, err = newRenderer(t, nil, WithLogoPath(filepath.Join(t.TempDir(), "nope.png"))).Render(context.Background(), member())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)
}

func TestRenderUnknownFontFails(t *testing.T) {
	r := newRenderer(t, func(l *Layout) { l.FontFamily = "NoSuchFont" })
	_, err := r.Render(context.Background(), member())
	assert.Error(t, err)
}

func TestNewRendererRejectsBadGeometry(t *testing.T) {
	l := DefaultLayout()
	l.QR = Box{X: 230, Y: 32, W: 43.2, H: 43.2}
	_, err := NewRenderer(l)
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	l = DefaultLayout()
	l.Pages = "sideways"
	_, err = NewRenderer(l)
	assert.Error(t, err)
}

func TestRenderTrimsLongText(t *testing.T) {
	m := member()
	m.Zone = "An Extremely Long Zone Name That Would Otherwise Run Under The QR Code"
	doc, err := newRenderer(t, nil).Render(context.Background(), m)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Data), "...) Tj")
}
