// Package mpl imports the Magyar Posta (MPL) PostInfo XML feed. The feed
// mixes every kind of postal facility; only nodes flagged isPostPoint="1"
// are real service points worth importing.
package mpl

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BearBump/LockerBox/internal/models"
	"github.com/BearBump/LockerBox/internal/vendors"
	"github.com/pkg/errors"
)

const vendorCode = "mpl"

type Adapter struct {
	httpc *http.Client
}

func New(connectTimeout, totalTimeout time.Duration) *Adapter {
	return &Adapter{httpc: vendors.NewHTTPClient(connectTimeout, totalTimeout)}
}

func (a *Adapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	return vendors.Get(ctx, a.httpc, vendorCode, url)
}

type post struct {
	IsPostPoint string `xml:"isPostPoint,attr"`
	ZipCodeAttr string `xml:"zipCode,attr"`

	ID               string `xml:"ID"`
	Name             string `xml:"name"`
	City             string `xml:"city"`
	ZipCode          string `xml:"zipCode"`
	ServicePointType string `xml:"ServicePointType"`

	GPS struct {
		Lat string `xml:"WGSLat"`
		Lon string `xml:"WGSLon"`
	} `xml:"gpsData"`

	Street struct {
		Name        string `xml:"name"`
		Type        string `xml:"type"`
		HouseNumber string `xml:"houseNumber"`
	} `xml:"street"`

	WorkingHours struct {
		Days []struct {
			Day   string `xml:"day"`
			From1 string `xml:"From1"`
			From  string `xml:"from"`
			To1   string `xml:"To1"`
			To    string `xml:"to"`
		} `xml:"days"`
	} `xml:"workingHours"`
}

func (a *Adapter) Parse(raw []byte) ([]models.LocationRecord, error) {
	// The root element name varies between exports, so walk the token
	// stream and decode every <post> wherever it sits.
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var out []models.LocationRecord
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &vendors.ParseError{Vendor: vendorCode, Err: errors.Wrap(err, "decode xml")}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true
		if start.Name.Local != "post" {
			continue
		}

		var p post
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, &vendors.ParseError{Vendor: vendorCode, Err: errors.Wrap(err, "decode post element")}
		}
		if p.IsPostPoint != "1" {
			continue
		}

		id := strings.TrimSpace(p.ID)
		if id == "" {
			slog.Warn("mpl: skip post without ID")
			continue
		}

		// Coordinates use a comma decimal separator.
		lat, latOK := vendors.AsFloat(p.GPS.Lat)
		lon, lonOK := vendors.AsFloat(p.GPS.Lon)
		if !latOK || !lonOK {
			slog.Warn("mpl: skip post without coordinates", "id", id)
			continue
		}
		if !vendors.ValidCoords(lat, lon) {
			slog.Warn("mpl: skip post with invalid coordinates", "id", id, "lat", lat, "lon", lon)
			continue
		}

		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "MPL " + id
		}
		city := strings.TrimSpace(p.City)
		zip := strings.TrimSpace(p.ZipCodeAttr)
		if zip == "" {
			zip = strings.TrimSpace(p.ZipCode)
		}
		addr := buildAddress(p, city, zip)

		spType := strings.TrimSpace(p.ServicePointType)
		if spType == "" {
			spType = "CS"
		}

		out = append(out, models.LocationRecord{
			VendorLocationID: id,
			Name:             name,
			Type:             models.TypeLocker,
			Status:           models.StatusActive,
			Lat:              lat,
			Lon:              lon,
			AddressLine:      vendors.StrPtr(addr),
			City:             vendors.StrPtr(city),
			Postcode:         vendors.StrPtr(zip),
			Country:          "HU",
			Services:         map[string]any{"ServicePointType": spType},
			OpeningHours:     workingHours(p),
		})
	}

	// A feed with zero post nodes is a valid empty export. Only a payload
	// with no XML elements at all is malformed.
	if !sawElement {
		return nil, &vendors.ParseError{Vendor: vendorCode, Err: errors.New("payload is not xml")}
	}

	slog.Info("mpl: parsed locations", "count", len(out))
	return out, nil
}

func buildAddress(p post, city, zip string) string {
	var parts []string
	for _, s := range []string{p.Street.Name, p.Street.Type, p.Street.HouseNumber} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	street := strings.Join(parts, " ")
	switch {
	case street != "" && city != "":
		return street + ", " + strings.TrimSpace(zip+" "+city)
	case street == "" && city != "":
		return strings.TrimSpace(zip + " " + city)
	default:
		return street
	}
}

func workingHours(p post) *string {
	hours := map[string]string{}
	for _, d := range p.WorkingHours.Days {
		day := strings.TrimSpace(d.Day)
		if day == "" {
			continue
		}
		from := strings.TrimSpace(d.From1)
		if from == "" {
			from = strings.TrimSpace(d.From)
		}
		to := strings.TrimSpace(d.To1)
		if to == "" {
			to = strings.TrimSpace(d.To)
		}
		if from == "" && to == "" {
			hours[day] = ""
		} else {
			hours[day] = from + "-" + to
		}
	}
	if len(hours) == 0 {
		return nil
	}
	b, err := json.Marshal(hours)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
