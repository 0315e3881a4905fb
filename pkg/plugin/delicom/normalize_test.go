package delicom_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/tournevent/delicom/pkg/plugin/delicom"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func rawShop(id string) delicom.ParcelShop {
	return delicom.ParcelShop{
		ParcelShopID: strPtr(id),
		Company:      strPtr("Shop " + id),
		Street:       "Rue Neuve",
		HouseNo:      "12",
		City:         "Bruxelles",
		ZipCode:      "1000",
		CountryN:     "056",
		IsoAlpha2:    "BE",
		Longitude:    floatPtr(4.357),
		Latitude:     floatPtr(50.851),
	}
}

func TestNormalizer_MapsFields(t *testing.T) {
	n := delicom.NewNormalizer(nil)

	shop, err := n.Normalize(rawShop("BE10101"))
	require.NoError(t, err)

	assert.Equal(t, "BE10101", shop.ID)
	assert.Equal(t, "Shop BE10101", shop.Name)
	assert.True(t, shop.Active)
	assert.Equal(t, "Rue Neuve", shop.Location.Route)
	assert.Equal(t, "12", shop.Location.StreetNumber)
	assert.Equal(t, "Bruxelles", shop.Location.Locality)
	assert.Equal(t, "1000", shop.Location.PostalCode)
	assert.Equal(t, "BE", shop.Location.CountryCode)
	assert.Equal(t, "056", shop.Location.CountryNumeric)
	require.True(t, shop.Location.HasCoordinates())
	assert.Equal(t, 4.357, *shop.Location.Longitude)
	assert.Equal(t, 50.851, *shop.Location.Latitude)
	assert.Same(t, delicom.PickupLogo, shop.Logo)
}

func TestNormalizer_OpeningHours(t *testing.T) {
	tests := []struct {
		name     string
		hours    []delicom.OpeningHours
		expected []plugin.HoursBlock
	}{
		{
			name: "missing morning close with afternoon opening",
			hours: []delicom.OpeningHours{
				{Weekday: "Monday", OpenMorning: "0900", CloseMorning: "", OpenAfternoon: "1300", CloseAfternoon: "1800"},
			},
			expected: []plugin.HoursBlock{{Day: plugin.Monday, Start: 1300, End: 1800}},
		},
		{
			name: "split day with colons",
			hours: []delicom.OpeningHours{
				{Weekday: "tuesday", OpenMorning: "09:00", CloseMorning: "12:30", OpenAfternoon: "13:30", CloseAfternoon: "18:00"},
			},
			expected: []plugin.HoursBlock{
				{Day: plugin.Tuesday, Start: 900, End: 1230},
				{Day: plugin.Tuesday, Start: 1330, End: 1800},
			},
		},
		{
			name: "continuous day closes at afternoon close",
			hours: []delicom.OpeningHours{
				{Weekday: "SATURDAY", OpenMorning: "10:00", CloseAfternoon: "16:00"},
			},
			expected: []plugin.HoursBlock{{Day: plugin.Saturday, Start: 1000, End: 1600}},
		},
		{
			name: "afternoon without close",
			hours: []delicom.OpeningHours{
				{Weekday: "Friday", OpenAfternoon: "14:00"},
			},
			expected: nil,
		},
		{
			name: "open without any close",
			hours: []delicom.OpeningHours{
				{Weekday: "Friday", OpenMorning: "08:00"},
			},
			expected: nil,
		},
		{
			name: "unknown weekday",
			hours: []delicom.OpeningHours{
				{Weekday: "Funday", OpenMorning: "09:00", CloseMorning: "12:00"},
			},
			expected: nil,
		},
		{
			name: "non numeric time",
			hours: []delicom.OpeningHours{
				{Weekday: "Sunday", OpenMorning: "nine", CloseMorning: "12:00", OpenAfternoon: "13:00", CloseAfternoon: "17:00"},
			},
			expected: []plugin.HoursBlock{{Day: plugin.Sunday, Start: 1300, End: 1700}},
		},
	}

	n := delicom.NewNormalizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := rawShop("BE1")
			rec.OpeningHours = tt.hours

			shop, err := n.Normalize(rec)
			require.NoError(t, err)

			if tt.expected == nil {
				assert.True(t, shop.BusinessHours.IsEmpty())
				return
			}
			assert.Equal(t, tt.expected, shop.BusinessHours.Blocks())
		})
	}
}

func TestNormalizer_Capabilities(t *testing.T) {
	n := delicom.NewNormalizer(nil)

	none := rawShop("BE1")
	none.PickupByConsigneeAllowed = boolPtr(false)
	none.ReturnAllowed = boolPtr(false)
	none.PrepaidAllowed = boolPtr(false)
	none.CashOnDeliveryAllowed = boolPtr(false)
	shop, err := n.Normalize(none)
	require.NoError(t, err)
	assert.Equal(t, 0, shop.Capabilities.Len())

	all := rawShop("BE2")
	all.PickupByConsigneeAllowed = boolPtr(true)
	all.ReturnAllowed = boolPtr(true)
	all.PrepaidAllowed = boolPtr(true)
	all.CashOnDeliveryAllowed = boolPtr(true)
	shop, err = n.Normalize(all)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]plugin.Capability{plugin.CapabilityCOD, plugin.CapabilityOnline, plugin.CapabilityReturn, plugin.CapabilityPickup},
		shop.Capabilities.List(),
	)

	// Absent flags count as false, each flag stands alone.
	one := rawShop("BE3")
	one.CashOnDeliveryAllowed = boolPtr(true)
	shop, err = n.Normalize(one)
	require.NoError(t, err)
	assert.Equal(t, []plugin.Capability{plugin.CapabilityCOD}, shop.Capabilities.List())
}

func TestNormalizer_PartialFailure(t *testing.T) {
	records := make([]delicom.ParcelShop, 5)
	for i := range records {
		records[i] = rawShop(fmt.Sprintf("BE%d", i+1))
	}
	records[2].ParcelShopID = nil

	shops, skipped := delicom.NewNormalizer(nil).NormalizeAll(records)

	require.Len(t, shops, 4)
	assert.Equal(t, []string{"BE1", "BE2", "BE4", "BE5"}, shopIDs(shops))
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Index)
	assert.Equal(t, "parcelShopId", skipped[0].Field)
	assert.True(t, errors.Is(skipped[0], plugin.ErrMalformedRecord))
}

func TestNormalizer_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *delicom.ParcelShop)
		field string
	}{
		{"blank id", func(r *delicom.ParcelShop) { r.ParcelShopID = strPtr("  ") }, "parcelShopId"},
		{"no name", func(r *delicom.ParcelShop) { r.Company = nil }, "company"},
		{"no longitude", func(r *delicom.ParcelShop) { r.Longitude = nil }, "coordinates"},
		{"no latitude", func(r *delicom.ParcelShop) { r.Latitude = nil }, "coordinates"},
	}

	n := delicom.NewNormalizer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := rawShop("BE9")
			tt.edit(&rec)

			_, err := n.Normalize(rec)
			require.Error(t, err)

			var nerr *plugin.NormalizationError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, tt.field, nerr.Field)
		})
	}
}

func TestNormalizer_SharesLogo(t *testing.T) {
	logo := &plugin.ShopLogo{Active: "a.png", Inactive: "i.png", Shadow: "s.png"}
	shops, _ := delicom.NewNormalizer(logo).NormalizeAll([]delicom.ParcelShop{rawShop("BE1"), rawShop("BE2")})

	require.Len(t, shops, 2)
	assert.Same(t, logo, shops[0].Logo)
	assert.Same(t, shops[0].Logo, shops[1].Logo)
}

func shopIDs(shops []plugin.Shop) []string {
	ids := make([]string, len(shops))
	for i, s := range shops {
		ids[i] = s.ID
	}
	return ids
}
