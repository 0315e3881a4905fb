package delicom

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	loginServicePath      = "LoginService/V2_0/"
	parcelShopFinderPath  = "ParcelShopFinderService/V5_0/"
	defaultMessageLang    = "en_EN"
	loginNamespace        = "http://dpd.com/common/service/types/LoginService/2.0"
	authNamespace         = "http://dpd.com/common/service/types/Authentication/2.0"
	parcelShopFinderSpace = "http://dpd.com/common/service/types/ParcelShopFinderService/5.0"
)

// SOAPAPIClient is the production implementation of APIClient using SOAP.
type SOAPAPIClient struct {
	httpClient *http.Client
	logger     *otelzap.Logger
}

// SOAPAPIClientConfig holds configuration for the SOAP client.
type SOAPAPIClientConfig struct {
	Timeout time.Duration
	Logger  *otelzap.Logger
}

// NewSOAPAPIClient creates a new SOAP-based API client for production use.
// The server URL travels with each request, so one client serves both
// the live and the stage environment.
func NewSOAPAPIClient(cfg SOAPAPIClientConfig) *SOAPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &SOAPAPIClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Login authenticates with the DPD LoginService.
func (c *SOAPAPIClient) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	lang := req.MessageLanguage
	if lang == "" {
		lang = defaultMessageLang
	}

	reqBody, err := buildEnvelope(loginEnvelopeTemplate, struct {
		DelisID         string
		Password        string
		MessageLanguage string
	}{req.DelisID, req.Password, lang})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	body, err := c.call(ctx, serviceURL(req.Endpoint, loginServicePath), "getAuth", reqBody, req.TimeLogging)
	if err != nil {
		return nil, err
	}

	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, env.Body.Fault.apiError()
	}
	if env.Body.GetAuthResponse == nil || env.Body.GetAuthResponse.Return.AuthToken == "" {
		return nil, &APIError{Code: "PARSE_ERROR", Description: "No auth token in response"}
	}

	r := env.Body.GetAuthResponse.Return
	return &LoginResponse{
		DelisID:     r.DelisID,
		CustomerUID: r.CustomerUID,
		Token:       r.AuthToken,
		Depot:       r.Depot,
	}, nil
}

// FindParcelShops searches the DPD ParcelShopFinderService by coordinate.
func (c *SOAPAPIClient) FindParcelShops(ctx context.Context, session *credstore.Session, q GeoQuery) ([]ParcelShop, error) {
	reqBody, err := buildEnvelope(findByGeoEnvelopeTemplate, struct {
		DelisID         string
		Token           string
		MessageLanguage string
		Longitude       string
		Latitude        string
	}{
		DelisID:         session.DelisID,
		Token:           session.Token,
		MessageLanguage: defaultMessageLang,
		Longitude:       strconv.FormatFloat(q.Longitude, 'f', -1, 64),
		Latitude:        strconv.FormatFloat(q.Latitude, 'f', -1, 64),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	body, err := c.call(ctx, serviceURL(session.Endpoint, parcelShopFinderPath), "findParcelShopsByGeoData", reqBody, session.TimeLogging)
	if err != nil {
		return nil, err
	}

	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Body.Fault != nil {
		return nil, env.Body.Fault.apiError()
	}
	if env.Body.FindParcelShopsByGeoDataResponse == nil {
		return nil, &APIError{Code: "PARSE_ERROR", Description: "No parcel shop data in response"}
	}

	raw := env.Body.FindParcelShopsByGeoDataResponse.ParcelShop
	shops := make([]ParcelShop, len(raw))
	for i, s := range raw {
		shops[i] = s.toAPI()
	}
	return shops, nil
}

// ============================================================================
// SOAP Request Helpers
// ============================================================================

func (c *SOAPAPIClient) call(ctx context.Context, endpoint, action string, reqBody []byte, timeLogging bool) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if timeLogging {
		c.logger.Ctx(ctx).Info("DPD web service call",
			zap.String("action", action),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseSOAPError(resp.StatusCode, body)
	}
	return body, nil
}

func serviceURL(base, path string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path
}

// ============================================================================
// SOAP Request Builders
// ============================================================================

const loginEnvelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns="` + loginNamespace + `">
  <soapenv:Header/>
  <soapenv:Body>
    <ns:getAuth>
      <delisId>{{xml .DelisID}}</delisId>
      <password>{{xml .Password}}</password>
      <messageLanguage>{{xml .MessageLanguage}}</messageLanguage>
    </ns:getAuth>
  </soapenv:Body>
</soapenv:Envelope>`

const findByGeoEnvelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns="` + authNamespace + `" xmlns:ns1="` + parcelShopFinderSpace + `">
  <soapenv:Header>
    <ns:authentication>
      <delisId>{{xml .DelisID}}</delisId>
      <authToken>{{xml .Token}}</authToken>
      <messageLanguage>{{xml .MessageLanguage}}</messageLanguage>
    </ns:authentication>
  </soapenv:Header>
  <soapenv:Body>
    <ns1:findParcelShopsByGeoData>
      <longitude>{{.Longitude}}</longitude>
      <latitude>{{.Latitude}}</latitude>
    </ns1:findParcelShopsByGeoData>
  </soapenv:Body>
</soapenv:Envelope>`

var templateFuncs = template.FuncMap{
	"xml": func(s string) (string, error) {
		var buf bytes.Buffer
		if err := xml.EscapeText(&buf, []byte(s)); err != nil {
			return "", err
		}
		return buf.String(), nil
	},
}

func buildEnvelope(envelope string, data interface{}) ([]byte, error) {
	tmpl, err := template.New("envelope").Funcs(templateFuncs).Parse(envelope)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// SOAP Response Parsers - XML Types
// ============================================================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault                            *soapFault                        `xml:"Fault,omitempty"`
	GetAuthResponse                  *getAuthResponse                  `xml:"getAuthResponse,omitempty"`
	FindParcelShopsByGeoDataResponse *findParcelShopsByGeoDataResponse `xml:"findParcelShopsByGeoDataResponse,omitempty"`
}

type soapFault struct {
	Code   string      `xml:"faultcode"`
	String string      `xml:"faultstring"`
	Detail faultDetail `xml:"detail"`
}

// DPD puts its own error code into the fault detail, under an element
// named after the fault type (authenticationFault, faultCodeType, ...).
type faultDetail struct {
	Inner []struct {
		ErrorCode    string `xml:"errorCode"`
		ErrorMessage string `xml:"errorMessage"`
	} `xml:",any"`
}

func (f *soapFault) apiError() *APIError {
	for _, d := range f.Detail.Inner {
		if d.ErrorCode != "" {
			return &APIError{Code: d.ErrorCode, Description: d.ErrorMessage}
		}
	}
	return &APIError{Code: f.Code, Description: f.String}
}

type getAuthResponse struct {
	Return struct {
		DelisID     string `xml:"delisId"`
		CustomerUID string `xml:"customerUid"`
		AuthToken   string `xml:"authToken"`
		Depot       string `xml:"depot"`
	} `xml:"return"`
}

type findParcelShopsByGeoDataResponse struct {
	ParcelShop []xmlParcelShop `xml:"parcelShop"`
}

type xmlParcelShop struct {
	ParcelShopID *string          `xml:"parcelShopId"`
	Company      *string          `xml:"company"`
	Street       string           `xml:"street"`
	HouseNo      string           `xml:"houseNo"`
	CountryN     string           `xml:"countryN"`
	IsoAlpha2    string           `xml:"isoAlpha2"`
	ZipCode      string           `xml:"zipCode"`
	City         string           `xml:"city"`
	Longitude    *string          `xml:"longitude"`
	Latitude     *string          `xml:"latitude"`
	OpeningHours []xmlOpeningHour `xml:"openingHours"`

	PickupByConsigneeAllowed *string `xml:"pickupByConsigneeAllowed"`
	ReturnAllowed            *string `xml:"returnAllowed"`
	PrepaidAllowed           *string `xml:"prepaidAllowed"`
	CashOnDeliveryAllowed    *string `xml:"cashOnDeliveryAllowed"`
}

type xmlOpeningHour struct {
	Weekday        string `xml:"weekday"`
	OpenMorning    string `xml:"openMorning"`
	CloseMorning   string `xml:"closeMorning"`
	OpenAfternoon  string `xml:"openAfternoon"`
	CloseAfternoon string `xml:"closeAfternoon"`
}

func (s xmlParcelShop) toAPI() ParcelShop {
	hours := make([]OpeningHours, len(s.OpeningHours))
	for i, h := range s.OpeningHours {
		hours[i] = OpeningHours(h)
	}

	return ParcelShop{
		ParcelShopID:             nonEmpty(s.ParcelShopID),
		Company:                  nonEmpty(s.Company),
		Street:                   s.Street,
		HouseNo:                  s.HouseNo,
		City:                     s.City,
		ZipCode:                  s.ZipCode,
		CountryN:                 s.CountryN,
		IsoAlpha2:                s.IsoAlpha2,
		Longitude:                parseOptionalFloat(s.Longitude),
		Latitude:                 parseOptionalFloat(s.Latitude),
		OpeningHours:             hours,
		PickupByConsigneeAllowed: parseOptionalBool(s.PickupByConsigneeAllowed),
		ReturnAllowed:            parseOptionalBool(s.ReturnAllowed),
		PrepaidAllowed:           parseOptionalBool(s.PrepaidAllowed),
		CashOnDeliveryAllowed:    parseOptionalBool(s.CashOnDeliveryAllowed),
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func parseSOAPError(status int, body []byte) error {
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err == nil && env.Body.Fault != nil {
		return env.Body.Fault.apiError()
	}

	desc := strings.TrimSpace(string(body))
	if len(desc) > 512 {
		desc = desc[:512]
	}
	return &APIError{
		Code:        fmt.Sprintf("HTTP_%d", status),
		Description: desc,
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseOptionalFloat(s *string) *float64 {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(*v, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseOptionalBool(s *string) *bool {
	v := nonEmpty(s)
	if v == nil {
		return nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return nil
	}
	return &b
}

var _ APIClient = (*SOAPAPIClient)(nil)
