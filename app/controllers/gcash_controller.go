package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/ctx"
)

// MaxUploadBytes caps a QR image upload.
const MaxUploadBytes = 5 << 20

type GcashController struct {
	svc *services.GcashService
}

func NewGcashController(svc *services.GcashService) *GcashController {
	return &GcashController{svc: svc}
}

func (g *GcashController) Index(c *ctx.Context) {
	entries, err := g.svc.List(c.Context())
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(entries)
}

func (g *GcashController) Store(c *ctx.Context) {
	var in services.CreateGcashInput
	if !c.BindJSON(&in) {
		return
	}
	e, err := g.svc.Create(c.Context(), c.UserID(), in.QRImage)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.Created(e)
}

func (g *GcashController) Update(c *ctx.Context) {
	var in services.ReplaceGcashInput
	if !c.BindJSON(&in) {
		return
	}
	e, err := g.svc.Replace(c.Context(), c.UserID(), c.Param("id"), in.QRImage)
	if err != nil {
		fail(c, err, "Gcash entry not found")
		return
	}
	c.OK(e)
}

// Upload takes multipart field "file" and answers {url}.
func (g *GcashController) Upload(c *ctx.Context) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, MaxUploadBytes)
	file, _, err := c.R.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Error(http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		c.Field("file", "Please select a valid image file.")
		return
	}
	defer file.Close()

	url, err := g.svc.Upload(c.Context(), file)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.OK(map[string]string{"url": url})
}
