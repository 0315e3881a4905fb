package delicom

import (
	"fmt"
	"strconv"

	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/plugin"
)

// Server selectors. Any value other than ServerLive selects the stage
// environment.
const (
	ServerStage = 0
	ServerLive  = 1
)

const (
	DefaultLiveURL  = "https://public-ws.dpd.com/services/"
	DefaultStageURL = "https://public-ws-stage.dpd.com/services/"
)

// Settings is the merchant configuration of the library.
type Settings struct {
	DelisID     string `json:"delis_id" jsonschema:"title=Delis ID,minLength=8,maxLength=8"`
	Password    string `json:"delis_password" jsonschema:"title=Password,minLength=1"`
	Server      int    `json:"delis_server" jsonschema:"title=Server,enum=0,enum=1,default=0"`
	TimeLogging bool   `json:"time_logging" jsonschema:"title=Time logging,default=false"`
}

// IsLive reports whether the settings select the live environment.
func (s Settings) IsLive() bool {
	return s.Server == ServerLive
}

// Matches reports whether a cached session was created for these settings.
// The password is not compared.
func (s Settings) Matches(sess *credstore.Session) bool {
	return sess != nil &&
		sess.DelisID == s.DelisID &&
		sess.Server == s.Server &&
		sess.TimeLogging == s.TimeLogging
}

// Endpoints holds the base URLs of both DPD environments.
type Endpoints struct {
	Live  string
	Stage string
}

// For returns the base URL selected by server.
func (e Endpoints) For(server int) string {
	if server == ServerLive {
		if e.Live == "" {
			return DefaultLiveURL
		}
		return e.Live
	}
	if e.Stage == "" {
		return DefaultStageURL
	}
	return e.Stage
}

// ParseSettings validates raw host configuration values against the
// declared configuration fields and builds Settings from them.
func ParseSettings(values map[string]string) (Settings, error) {
	if err := plugin.ValidateFields(configurationFields(), values); err != nil {
		return Settings{}, err
	}

	server, err := strconv.Atoi(values["delis_server"])
	if err != nil {
		return Settings{}, fmt.Errorf("delis_server: %w", plugin.ErrInvalidConfiguration)
	}

	return Settings{
		DelisID:     values["delis_id"],
		Password:    values["delis_password"],
		Server:      server,
		TimeLogging: values["time_logging"] == "1",
	}, nil
}
