package delicom

import (
	"context"

	"github.com/tournevent/delicom/pkg/credstore"
)

// APIClient defines the interface for DPD Delicom web service operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Login authenticates against the LoginService and returns a token.
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)

	// FindParcelShops searches parcel shops around a coordinate using an
	// authenticated session. Records are returned in provider order.
	FindParcelShops(ctx context.Context, session *credstore.Session, q GeoQuery) ([]ParcelShop, error)
}

// ============================================================================
// API Request/Response Types
// ============================================================================

// LoginRequest represents a LoginService getAuth request.
type LoginRequest struct {
	DelisID         string
	Password        string
	Endpoint        string // Base URL of the selected server
	MessageLanguage string
	TimeLogging     bool
}

// LoginResponse represents a LoginService getAuth response.
type LoginResponse struct {
	DelisID     string
	CustomerUID string
	Token       string
	Depot       string
}

// GeoQuery is the centre of a parcel shop search.
type GeoQuery struct {
	Longitude float64
	Latitude  float64
}

// ParcelShop is a raw parcel shop record. Pointer fields are optional in the
// provider schema; nil means the element was absent or unusable.
type ParcelShop struct {
	ParcelShopID *string
	Company      *string
	Street       string
	HouseNo      string
	City         string
	ZipCode      string
	CountryN     string
	IsoAlpha2    string
	Longitude    *float64
	Latitude     *float64
	OpeningHours []OpeningHours

	PickupByConsigneeAllowed *bool
	ReturnAllowed            *bool
	PrepaidAllowed           *bool
	CashOnDeliveryAllowed    *bool
}

// OpeningHours is the provider's opening-hour entry for one weekday.
// Times are "HH:MM"; empty strings mean not set.
type OpeningHours struct {
	Weekday        string
	OpenMorning    string
	CloseMorning   string
	OpenAfternoon  string
	CloseAfternoon string
}

// APIError represents an error from the DPD web services.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
