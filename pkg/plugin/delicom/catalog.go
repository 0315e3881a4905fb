package delicom

import (
	"github.com/invopop/jsonschema"
	"github.com/tournevent/delicom/pkg/plugin"
)

func configurationFields() []plugin.ConfigField {
	return []plugin.ConfigField{
		{Label: "DelisID", Name: "delis_id", Type: plugin.FieldText, Validator: plugin.ExactLength(8)},
		{Label: "Password", Name: "delis_password", Type: plugin.FieldPassword, Validator: plugin.NonEmpty()},
		{Label: "Server:Live", Name: "delis_server", Type: plugin.FieldOption, Value: "1"},
		{Label: "Server:Stage", Name: "delis_server", Type: plugin.FieldOption, Value: "0"},
		{Label: "Time Logging:On", Name: "time_logging", Type: plugin.FieldOption, Value: "1"},
		{Label: "Time Logging:Off", Name: "time_logging", Type: plugin.FieldOption, Value: "0"},
	}
}

func serviceCatalog() []plugin.Service {
	return []plugin.Service{
		{
			Label:       "Home With Predict",
			Description: "Get your parcel delivered at your place, we'll notify you in the morning when we are coming by.",
			Name:        "home_predict",
			Type:        plugin.ServiceClassic,
		},
		{
			Label:       "Pickup",
			Description: "Can't be home? Let us deliver your parcel in one of our Pickup points.",
			Name:        "pickup",
			Type:        plugin.ServiceParcelShop,
		},
	}
}

func settingsSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(Settings))
	s.Title = "DPD Delicom settings"
	return s
}
