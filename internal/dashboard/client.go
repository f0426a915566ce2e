// Package dashboard is the admin back office as a Go client of the shop API:
// the archived review table with its role editor, the live pricing board,
// the pricing update form and the GCash QR manager.
//
// Every view type owns its state behind a mutex, so a CLI or a websocket
// bridge can drive it from several goroutines.
package dashboard

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/http"
)

const requestTimeout = 5 * time.Second

// Client talks to the REST API rooted at base (".../api").
type Client struct {
	base  string
	token string
}

func NewClient(base, token string) *Client {
	return &Client{base: base, token: token}
}

// FromConfig builds a client from API_BASE_URL and API_TOKEN.
func FromConfig() *Client {
	return NewClient(config.APIBaseURL(), config.APIToken())
}

func (c *Client) prepare(ctx context.Context, r *http.Request) *http.Request {
	r = r.Timeout(requestTimeout).WithContext(ctx)
	if c.token != "" {
		r = r.Bearer(c.token)
	}
	return r
}

// send runs r and decodes a 2xx body into dest when dest is non-nil.
// Transport failures and non-2xx replies both come back as errors; the
// latter as *http.RequestError.
func (c *Client) send(ctx context.Context, r *http.Request, dest interface{}) error {
	resp, err := c.prepare(ctx, r).Send()
	if err != nil {
		return err
	}
	if err := resp.Throw(); err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return resp.JSON(dest)
}

// Users fetches the whole archived review table.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var body struct {
		Users []models.User `json:"users"`
	}
	if err := c.send(ctx, http.Get(c.base+"/auth/viewTO"), &body); err != nil {
		return nil, err
	}
	return body.Users, nil
}

func (c *Client) ChangeRole(ctx context.Context, orderID, role string) (models.User, error) {
	var u models.User
	err := c.send(ctx, http.Put(c.base+"/auth/role/"+url.PathEscape(orderID)).
		Body(map[string]string{"role": role}), &u)
	return u, err
}

// Pricing fetches one category by its URL slug (walk, drop, wash, special).
func (c *Client) Pricing(ctx context.Context, slug string) (models.ServicePricing, error) {
	var p models.ServicePricing
	err := c.send(ctx, http.Get(c.base+"/service/"+slug), &p)
	return p, err
}

// UpdatePricing sends newCost as typed; the server parses it.
func (c *Client) UpdatePricing(ctx context.Context, serviceType, newCost string) error {
	return c.send(ctx, http.Put(c.base+"/service/update").Body(map[string]string{
		"serviceType": serviceType,
		"newCost":     newCost,
	}), nil)
}

func (c *Client) GcashEntries(ctx context.Context) ([]models.GcashEntry, error) {
	var entries []models.GcashEntry
	if err := c.send(ctx, http.Get(c.base+"/gcash/gcashV"), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UploadQR posts an image as multipart field "file" and returns its URL.
func (c *Client) UploadQR(ctx context.Context, filename string, data []byte) (string, error) {
	var body struct {
		URL string `json:"url"`
	}
	err := c.send(ctx, http.Post(c.base+"/gcash/upload").File("file", filename, bytes.NewReader(data)), &body)
	return body.URL, err
}

func (c *Client) CreateGcash(ctx context.Context, images []string) (models.GcashEntry, error) {
	var e models.GcashEntry
	err := c.send(ctx, http.Post(c.base+"/gcash/gcash").Body(map[string][]string{"QRImage": images}), &e)
	return e, err
}

func (c *Client) ReplaceGcash(ctx context.Context, id, image string) (models.GcashEntry, error) {
	var e models.GcashEntry
	err := c.send(ctx, http.Put(c.base+"/gcash/gcashU/"+url.PathEscape(id)).
		Body(map[string]string{"QRImage": image}), &e)
	return e, err
}
