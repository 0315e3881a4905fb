package delicom

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/delicom/pkg/credstore"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnLogin           func(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	OnFindParcelShops func(ctx context.Context, session *credstore.Session, q GeoQuery) ([]ParcelShop, error)

	logins   atomic.Int64
	searches atomic.Int64
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Login returns a mock auth token.
func (m *MockAPIClient) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	m.logins.Add(1)

	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "LOGIN_5", Description: "Simulated login error"}
	}

	if m.OnLogin != nil {
		return m.OnLogin(ctx, req)
	}

	return &LoginResponse{
		DelisID:     req.DelisID,
		CustomerUID: req.DelisID,
		Token:       "mock-token-" + uuid.New().String()[:8],
		Depot:       "0530",
	}, nil
}

// FindParcelShops returns three mock parcel shops around the query point.
func (m *MockAPIClient) FindParcelShops(ctx context.Context, session *credstore.Session, q GeoQuery) ([]ParcelShop, error) {
	m.searches.Add(1)

	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}

	if m.OnFindParcelShops != nil {
		return m.OnFindParcelShops(ctx, session, q)
	}

	shops := make([]ParcelShop, 0, 3)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("BE1010%d", i)
		name := fmt.Sprintf("Pickup Point %d", i)
		lng := q.Longitude + float64(i)/1000
		lat := q.Latitude + float64(i)/1000
		yes, no := true, false
		shops = append(shops, ParcelShop{
			ParcelShopID: &id,
			Company:      &name,
			Street:       "Rue Neuve",
			HouseNo:      fmt.Sprintf("%d", i*10),
			City:         "Bruxelles",
			ZipCode:      "1000",
			CountryN:     "056",
			IsoAlpha2:    "BE",
			Longitude:    &lng,
			Latitude:     &lat,
			OpeningHours: []OpeningHours{
				{Weekday: "Monday", OpenMorning: "09:00", CloseMorning: "12:30", OpenAfternoon: "13:30", CloseAfternoon: "18:00"},
				{Weekday: "Saturday", OpenMorning: "10:00", CloseAfternoon: "16:00"},
			},
			PickupByConsigneeAllowed: &yes,
			ReturnAllowed:            &yes,
			PrepaidAllowed:           &no,
			CashOnDeliveryAllowed:    &no,
		})
	}
	return shops, nil
}

// LoginCalls returns how many times Login was invoked.
func (m *MockAPIClient) LoginCalls() int {
	return int(m.logins.Load())
}

// SearchCalls returns how many times FindParcelShops was invoked.
func (m *MockAPIClient) SearchCalls() int {
	return int(m.searches.Load())
}

var _ APIClient = (*MockAPIClient)(nil)
