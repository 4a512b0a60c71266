package registration

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, fixture) {
	t.Helper()
	f := newFixture(t)
	h := NewHandler(f.svc)
	app := fiber.New()
	api := app.Group("/api")
	api.Post("/register", h.Register)
	api.Post("/upload-photo/:registration_id", h.UploadPhoto)
	api.Get("/user/:registration_id", h.Get)
	api.Post("/payment", h.UpdatePayment)
	api.Get("/generate-card/:registration_id", h.GenerateCard)
	api.Get("/qr-data/:registration_id", h.QRData)
	api.Get("/users", h.List)
	api.Get("/payments/:registration_id", h.Payments)
	return app, f
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHandlerRegisterAndFetch(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/register", amaka())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created map[string]any
	decode(t, resp, &created)
	id, _ := created["registration_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, false, created["registration_fee_paid"])
	assert.NotContains(t, created, "address")

	resp = doJSON(t, app, http.MethodGet, "/api/user/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched map[string]any
	decode(t, resp, &fetched)
	assert.Equal(t, "Amaka", fetched["first_name"])

	resp = doJSON(t, app, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []map[string]any
	decode(t, resp, &all)
	require.Len(t, all, 1)
	assert.Equal(t, "Kaduna North", all[0]["lga"])
	assert.Equal(t, 6000.0, all[0]["registration_fee_amount"])
}

func TestHandlerStatusCodes(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/register", amaka())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/register", amaka())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad := amaka()
	bad.NIN = "123"
	resp = doJSON(t, app, http.MethodPost, "/api/register", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/user/FHP20240101DEADBEEF", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/generate-card/FHP20240101DEADBEEF", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/payment", map[string]any{
		"registration_id": "FHP20240101DEADBEEF", "amount": 500, "payment_type": "daily_dues",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/payments/FHP20240101DEADBEEF", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerPaymentAndCard(t *testing.T) {
	app, f := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/register", amaka())
	var created map[string]any
	decode(t, resp, &created)
	id := created["registration_id"].(string)

	resp = doJSON(t, app, http.MethodPost, "/api/payment", map[string]any{
		"registration_id": id, "amount": 6000, "payment_type": "registration",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ack map[string]string
	decode(t, resp, &ack)
	assert.Equal(t, "Payment updated successfully", ack["message"])

	resp = doJSON(t, app, http.MethodGet, "/api/generate-card/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "card_"+id+".pdf")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
	assert.Contains(t, string(body), "(Status: ACTIVE) Tj")

	resp = doJSON(t, app, http.MethodGet, "/api/qr-data/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var qr map[string]any
	decode(t, resp, &qr)
	assert.Equal(t, "active", qr["status"])

	resp = doJSON(t, app, http.MethodGet, "/api/payments/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var journal []map[string]any
	decode(t, resp, &journal)
	require.Len(t, journal, 1)
	assert.Equal(t, "registration", journal[0]["payment_type"])

	assert.EqualValues(t, 0, f.store.OpenSessions())
}

func TestHandlerUploadPhoto(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/register", amaka())
	var created map[string]any
	decode(t, resp, &created)
	id := created["registration_id"].(string)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "portrait.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo/"+id, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "Photo uploaded successfully", out["message"])
	assert.Contains(t, out["file_path"], id+"_photo.png")

	req = httptest.NewRequest(http.MethodPost, "/api/upload-photo/"+id, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
