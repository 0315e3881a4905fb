package delicom_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/plugin/delicom"
)

const getAuthResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:getAuthResponse xmlns:ns2="http://dpd.com/common/service/types/LoginService/2.0">
      <return>
        <delisId>sandbox1</delisId>
        <customerUid>sandbox1</customerUid>
        <authToken>TOKEN-123</authToken>
        <depot>0530</depot>
      </return>
    </ns2:getAuthResponse>
  </soap:Body>
</soap:Envelope>`

const loginFaultResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Fault occured</faultstring>
      <detail>
        <ns2:authenticationFault xmlns:ns2="http://dpd.com/common/service/types/LoginService/2.0">
          <errorCode>LOGIN_5</errorCode>
          <errorMessage>The given DELIS-Id and password do not match.</errorMessage>
        </ns2:authenticationFault>
      </detail>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

const findParcelShopsResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:findParcelShopsByGeoDataResponse xmlns:ns2="http://dpd.com/common/service/types/ParcelShopFinderService/5.0">
      <parcelShop>
        <parcelShopId>BE10234</parcelShopId>
        <company>Librairie du Centre</company>
        <street>Rue Neuve</street>
        <houseNo>45</houseNo>
        <countryN>056</countryN>
        <isoAlpha2>BE</isoAlpha2>
        <zipCode>1000</zipCode>
        <city>Bruxelles</city>
        <longitude>4.3551</longitude>
        <latitude>50.8522</latitude>
        <openingHours>
          <weekday>Monday</weekday>
          <openMorning>09:00</openMorning>
          <closeMorning>12:30</closeMorning>
          <openAfternoon>13:30</openAfternoon>
          <closeAfternoon>18:00</closeAfternoon>
        </openingHours>
        <openingHours>
          <weekday>Sunday</weekday>
          <openMorning></openMorning>
          <closeMorning></closeMorning>
          <openAfternoon></openAfternoon>
          <closeAfternoon></closeAfternoon>
        </openingHours>
        <pickupByConsigneeAllowed>true</pickupByConsigneeAllowed>
        <returnAllowed>false</returnAllowed>
        <prepaidAllowed>true</prepaidAllowed>
        <cashOnDeliveryAllowed>false</cashOnDeliveryAllowed>
      </parcelShop>
      <parcelShop>
        <company>No id</company>
        <longitude></longitude>
        <latitude>50.1</latitude>
      </parcelShop>
    </ns2:findParcelShopsByGeoDataResponse>
  </soap:Body>
</soap:Envelope>`

type soapCall struct {
	path   string
	action string
	body   string
}

type soapRecorder struct {
	mu    sync.Mutex
	calls []soapCall
}

func (r *soapRecorder) all() []soapCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]soapCall(nil), r.calls...)
}

func newSOAPServer(t *testing.T, responses map[string]string, status int) (*httptest.Server, *soapRecorder) {
	t.Helper()
	rec := &soapRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, soapCall{path: r.URL.Path, action: r.Header.Get("SOAPAction"), body: string(body)})
		rec.mu.Unlock()

		resp, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestSOAPAPIClient_Login(t *testing.T) {
	srv, calls := newSOAPServer(t, map[string]string{
		"/services/LoginService/V2_0/": getAuthResponse,
	}, http.StatusOK)
	client := delicom.NewSOAPAPIClient(delicom.SOAPAPIClientConfig{Timeout: 5 * time.Second})

	resp, err := client.Login(context.Background(), &delicom.LoginRequest{
		DelisID:     "sandbox1",
		Password:    "p&ss<word>",
		Endpoint:    srv.URL + "/services/",
		TimeLogging: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "TOKEN-123", resp.Token)
	assert.Equal(t, "0530", resp.Depot)
	assert.Equal(t, "sandbox1", resp.DelisID)

	recorded := calls.all()
	require.Len(t, recorded, 1)
	call := recorded[0]
	assert.Equal(t, "getAuth", call.action)
	assert.Contains(t, call.body, "<delisId>sandbox1</delisId>")
	assert.Contains(t, call.body, "<password>p&amp;ss&lt;word&gt;</password>")
	assert.Contains(t, call.body, "<messageLanguage>en_EN</messageLanguage>")
}

func TestSOAPAPIClient_LoginFault(t *testing.T) {
	srv, _ := newSOAPServer(t, map[string]string{
		"/LoginService/V2_0/": loginFaultResponse,
	}, http.StatusInternalServerError)
	client := delicom.NewSOAPAPIClient(delicom.SOAPAPIClientConfig{})

	_, err := client.Login(context.Background(), &delicom.LoginRequest{
		DelisID:  "sandbox1",
		Password: "wrong",
		Endpoint: srv.URL,
	})

	var apiErr *delicom.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "LOGIN_5", apiErr.Code)
	assert.NotContains(t, err.Error(), "wrong")
}

func TestSOAPAPIClient_HTTPError(t *testing.T) {
	srv, _ := newSOAPServer(t, map[string]string{
		"/LoginService/V2_0/": "service unavailable",
	}, http.StatusServiceUnavailable)
	client := delicom.NewSOAPAPIClient(delicom.SOAPAPIClientConfig{})

	_, err := client.Login(context.Background(), &delicom.LoginRequest{DelisID: "sandbox1", Endpoint: srv.URL + "/"})

	var apiErr *delicom.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "HTTP_503", apiErr.Code)
	assert.Equal(t, "service unavailable", apiErr.Description)
}

func TestSOAPAPIClient_FindParcelShops(t *testing.T) {
	srv, calls := newSOAPServer(t, map[string]string{
		"/ParcelShopFinderService/V5_0/": findParcelShopsResponse,
	}, http.StatusOK)
	client := delicom.NewSOAPAPIClient(delicom.SOAPAPIClientConfig{})

	session := &credstore.Session{DelisID: "sandbox1", Token: "TOKEN-123", Endpoint: srv.URL}
	shops, err := client.FindParcelShops(context.Background(), session, delicom.GeoQuery{Longitude: 4.3517, Latitude: 50.8503})

	require.NoError(t, err)
	require.Len(t, shops, 2)

	first := shops[0]
	require.NotNil(t, first.ParcelShopID)
	assert.Equal(t, "BE10234", *first.ParcelShopID)
	assert.Equal(t, "Librairie du Centre", *first.Company)
	assert.Equal(t, "45", first.HouseNo)
	assert.Equal(t, "056", first.CountryN)
	assert.Equal(t, 4.3551, *first.Longitude)
	assert.Equal(t, 50.8522, *first.Latitude)
	require.Len(t, first.OpeningHours, 2)
	assert.Equal(t, delicom.OpeningHours{
		Weekday: "Monday", OpenMorning: "09:00", CloseMorning: "12:30", OpenAfternoon: "13:30", CloseAfternoon: "18:00",
	}, first.OpeningHours[0])
	assert.True(t, *first.PickupByConsigneeAllowed)
	assert.False(t, *first.ReturnAllowed)
	assert.True(t, *first.PrepaidAllowed)

	second := shops[1]
	assert.Nil(t, second.ParcelShopID)
	assert.Nil(t, second.Longitude, "empty element is treated as absent")
	assert.Nil(t, second.PickupByConsigneeAllowed)

	recorded := calls.all()
	require.Len(t, recorded, 1)
	call := recorded[0]
	assert.Equal(t, "findParcelShopsByGeoData", call.action)
	assert.Contains(t, call.body, "<authToken>TOKEN-123</authToken>")
	assert.Contains(t, call.body, "<longitude>4.3517</longitude>")
	assert.Contains(t, call.body, "<latitude>50.8503</latitude>")
	assert.True(t, strings.Contains(call.body, "ParcelShopFinderService/5.0"))
}

func TestSOAPAPIClient_ThroughClient(t *testing.T) {
	srv, _ := newSOAPServer(t, map[string]string{
		"/LoginService/V2_0/":            getAuthResponse,
		"/ParcelShopFinderService/V5_0/": findParcelShopsResponse,
	}, http.StatusOK)

	client := delicom.New(delicom.Config{
		Settings:  testSettings(),
		Endpoints: delicom.Endpoints{Live: srv.URL, Stage: srv.URL},
	}, nil, nil)

	shops, err := client.ListShops(context.Background(), brussels(), 10)

	require.NoError(t, err)
	require.Len(t, shops, 1, "record without id is skipped")
	assert.Equal(t, "BE10234", shops[0].ID)
	assert.Len(t, shops[0].BusinessHours.Blocks(), 2)
}
