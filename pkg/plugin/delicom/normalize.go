package delicom

import (
	"strings"

	"github.com/tournevent/delicom/pkg/plugin"
)

// PickupLogo is the logo attached to every DPD pickup point.
var PickupLogo = &plugin.ShopLogo{
	Active:   "/assets/dpd/pickup-active.png",
	Inactive: "/assets/dpd/pickup-inactive.png",
	Shadow:   "/assets/dpd/pickup-shadow.png",
}

// Normalizer maps raw parcel shop records to plugin shops.
type Normalizer struct {
	logo *plugin.ShopLogo
}

// NewNormalizer creates a normalizer that attaches logo to every shop.
// A nil logo selects PickupLogo.
func NewNormalizer(logo *plugin.ShopLogo) *Normalizer {
	if logo == nil {
		logo = PickupLogo
	}
	return &Normalizer{logo: logo}
}

// NormalizeAll converts records in order. Records missing an id, a name or
// coordinates are left out and reported, the rest of the batch is kept.
func (n *Normalizer) NormalizeAll(records []ParcelShop) ([]plugin.Shop, []*plugin.NormalizationError) {
	shops := make([]plugin.Shop, 0, len(records))
	var skipped []*plugin.NormalizationError

	for i, rec := range records {
		shop, err := n.normalize(i, rec)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		shops = append(shops, shop)
	}
	return shops, skipped
}

// Normalize converts a single record.
func (n *Normalizer) Normalize(rec ParcelShop) (plugin.Shop, error) {
	shop, err := n.normalize(0, rec)
	if err != nil {
		return plugin.Shop{}, err
	}
	return shop, nil
}

func (n *Normalizer) normalize(index int, rec ParcelShop) (plugin.Shop, *plugin.NormalizationError) {
	var id string
	if rec.ParcelShopID != nil {
		id = strings.TrimSpace(*rec.ParcelShopID)
	}

	switch {
	case id == "":
		return plugin.Shop{}, &plugin.NormalizationError{Index: index, Field: "parcelShopId"}
	case rec.Company == nil || strings.TrimSpace(*rec.Company) == "":
		return plugin.Shop{}, &plugin.NormalizationError{Index: index, RecordID: id, Field: "company"}
	case rec.Longitude == nil || rec.Latitude == nil:
		return plugin.Shop{}, &plugin.NormalizationError{Index: index, RecordID: id, Field: "coordinates"}
	}

	loc := plugin.Location{
		Route:          rec.Street,
		StreetNumber:   rec.HouseNo,
		Locality:       rec.City,
		PostalCode:     rec.ZipCode,
		CountryCode:    rec.IsoAlpha2,
		CountryNumeric: rec.CountryN,
	}
	loc.SetCoordinates(*rec.Longitude, *rec.Latitude)

	return plugin.Shop{
		ID:            id,
		Active:        true,
		Name:          strings.TrimSpace(*rec.Company),
		Location:      loc,
		BusinessHours: openingHours(rec.OpeningHours),
		Logo:          n.logo,
		Capabilities:  capabilities(rec),
	}, nil
}

// openingHours builds up to two blocks per weekday. The morning block closes
// at closeMorning, or at closeAfternoon when the day has no afternoon
// opening. Blocks with an unknown weekday or unparsable time are dropped.
func openingHours(days []OpeningHours) plugin.ShopHours {
	var hours plugin.ShopHours

	for _, d := range days {
		day, ok := plugin.ParseWeekday(d.Weekday)
		if !ok {
			continue
		}

		if d.OpenMorning != "" {
			closeAt := d.CloseMorning
			if closeAt == "" && d.OpenAfternoon == "" {
				closeAt = d.CloseAfternoon
			}
			if start, end, ok := clockRange(d.OpenMorning, closeAt); ok {
				hours.AddBlock(day, start, end)
			}
		}

		if d.OpenAfternoon != "" {
			if start, end, ok := clockRange(d.OpenAfternoon, d.CloseAfternoon); ok {
				hours.AddBlock(day, start, end)
			}
		}
	}
	return hours
}

func clockRange(open, closeAt string) (int, int, bool) {
	start, ok := plugin.ParseClock(open)
	if !ok {
		return 0, 0, false
	}
	end, ok := plugin.ParseClock(closeAt)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func capabilities(rec ParcelShop) plugin.Capabilities {
	var caps plugin.Capabilities
	if isTrue(rec.PickupByConsigneeAllowed) {
		caps = caps.Add(plugin.CapabilityPickup)
	}
	if isTrue(rec.ReturnAllowed) {
		caps = caps.Add(plugin.CapabilityReturn)
	}
	if isTrue(rec.PrepaidAllowed) {
		caps = caps.Add(plugin.CapabilityOnline)
	}
	if isTrue(rec.CashOnDeliveryAllowed) {
		caps = caps.Add(plugin.CapabilityCOD)
	}
	return caps
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
