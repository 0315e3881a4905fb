package plugin

import (
	"time"
)

// ShipmentStatus represents the normalized status of a shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusPickedUp       ShipmentStatus = "picked_up"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusAtParcelShop   ShipmentStatus = "at_parcel_shop"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusException      ShipmentStatus = "exception"
)

// ServiceType groups services by how the parcel reaches the consignee.
type ServiceType string

const (
	ServiceClassic    ServiceType = "classic"
	ServiceParcelShop ServiceType = "parcelshop"
)

// LabelFormat represents the format of shipping labels.
type LabelFormat string

const (
	LabelPDF LabelFormat = "pdf"
	LabelPNG LabelFormat = "png"
	LabelZPL LabelFormat = "zpl"
)

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightLB WeightUnit = "lb"
)

// FieldType tells the host how to render a configuration field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldPassword FieldType = "password"
	FieldOption   FieldType = "option"
)

// ConfigField is a single entry of a library's settings form. Option fields
// sharing a Name form one choice, each entry contributing one Value.
type ConfigField struct {
	Label     string    `json:"label"`
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Value     string    `json:"value,omitempty"`
	Validator Validator `json:"validator"`
}

// Service describes a shipping service offered at checkout.
type Service struct {
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Name        string      `json:"name"`
	Type        ServiceType `json:"type"`
}

// Location is an address, optionally resolved to coordinates.
// Longitude and Latitude are either both set or both nil.
type Location struct {
	Route          string   `json:"route,omitempty"`
	StreetNumber   string   `json:"streetNumber,omitempty"`
	Locality       string   `json:"locality,omitempty"`
	PostalCode     string   `json:"postalCode,omitempty"`
	CountryCode    string   `json:"countryCode,omitempty"` // ISO 3166-1 alpha-2
	CountryNumeric string   `json:"countryNumeric,omitempty"`
	Longitude      *float64 `json:"lng,omitempty"`
	Latitude       *float64 `json:"lat,omitempty"`
}

// HasCoordinates reports whether the location can be used for a geographic search.
func (l *Location) HasCoordinates() bool {
	return l.Longitude != nil && l.Latitude != nil
}

// SetCoordinates sets both coordinates at once.
func (l *Location) SetCoordinates(lng, lat float64) {
	l.Longitude = &lng
	l.Latitude = &lat
}

// ShopLogo holds the map marker images for a parcel shop.
type ShopLogo struct {
	Active   string `json:"active"`
	Inactive string `json:"inactive"`
	Shadow   string `json:"shadow"`
}

// Shop is a parcel shop in the host's model.
type Shop struct {
	ID            string       `json:"id"`
	Active        bool         `json:"active"`
	Name          string       `json:"name"`
	Location      Location     `json:"location"`
	BusinessHours ShopHours    `json:"businessHours"`
	Logo          *ShopLogo    `json:"logo,omitempty"`
	Capabilities  Capabilities `json:"capabilities"`
}

// Address represents a shipping address.
type Address struct {
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Parcel represents a single parcel of an order.
type Parcel struct {
	Weight     float64    `json:"weight"`
	WeightUnit WeightUnit `json:"weightUnit"`
	Reference  string     `json:"reference,omitempty"`
}

// Order is the host order a label is requested for.
type Order struct {
	ID           string   `json:"id"`
	Reference    string   `json:"reference,omitempty"`
	Service      string   `json:"service"`
	ParcelShopID string   `json:"parcelShopId,omitempty"`
	Recipient    Address  `json:"recipient"`
	Parcels      []Parcel `json:"parcels"`
}

// Label represents a shipping label.
type Label struct {
	Number string      `json:"number"`
	Format LabelFormat `json:"format"`
	Data   string      `json:"data,omitempty"` // Base64 encoded if inline
	URL    string      `json:"url,omitempty"`
}

// TrackingEvent represents a tracking event.
type TrackingEvent struct {
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	Status      ShipmentStatus `json:"status"`
}

// Tracking is the track and trace state of a label.
type Tracking struct {
	LabelNumber string          `json:"labelNumber"`
	Status      ShipmentStatus  `json:"status"`
	Events      []TrackingEvent `json:"events"`
}
