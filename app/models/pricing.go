package models

import "time"

const PricingCollection = "services"

const (
	WalkIn      = "WalkIn"
	DropOff     = "DropOff"
	WashAndDry  = "WashAndDry"
	SpecialItem = "SpecialItem"
)

// ServiceTypes is the fixed category set in display order.
var ServiceTypes = []string{WalkIn, DropOff, WashAndDry, SpecialItem}

// Slugs maps the URL segment of GET /api/service/{slug} to a service type.
var Slugs = map[string]string{
	"walk":    WalkIn,
	"drop":    DropOff,
	"wash":    WashAndDry,
	"special": SpecialItem,
}

// SlugFor is the inverse of Slugs.
func SlugFor(serviceType string) (string, bool) {
	for slug, t := range Slugs {
		if t == serviceType {
			return slug, true
		}
	}
	return "", false
}

func ValidServiceType(t string) bool {
	_, ok := SlugFor(t)
	return ok
}

// ServicePricing is the default cost of one category.
type ServicePricing struct {
	ServiceType string    `bson:"serviceType" json:"serviceType"`
	DefaultCost float64   `bson:"defaultCost" json:"defaultCost"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
