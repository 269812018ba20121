package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rileyhilliard/lcdash/internal/logger"
	"github.com/rileyhilliard/lcdash/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default lookup endpoints.
const (
	DefaultPublicIPURL    = "https://api.ipify.org?format=json"
	DefaultGeoURLTemplate = "http://ip-api.com/json/{ip}"
)

const maxBodyBytes = 64 << 10

// Identity resolves the public address, then geolocates it. The second
// hop only runs when the first succeeds.
type Identity struct {
	client      *http.Client
	ipURL       string
	geoTemplate string
	log         logger.Logger
}

// NewIdentity creates the adapter. A zero timeout uses DefaultTimeout.
func NewIdentity(ipURL, geoTemplate string, timeout time.Duration, log logger.Logger) *Identity {
	if ipURL == "" {
		ipURL = DefaultPublicIPURL
	}
	if geoTemplate == "" {
		geoTemplate = DefaultGeoURLTemplate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Identity{
		client:      &http.Client{Timeout: timeout},
		ipURL:       ipURL,
		geoTemplate: geoTemplate,
		log:         log,
	}
}

func (i *Identity) Name() string { return "identity" }

func (i *Identity) Fetch(ctx context.Context) telemetry.Result {
	ip, err := i.publicIP(ctx)
	if err != nil {
		return telemetry.Unavailable(i.Name(), fmt.Errorf("public ip: %w", err))
	}
	values := map[string]any{telemetry.FieldPublicIP: ip.String()}

	geo, err := i.geolocate(ctx, ip)
	if err != nil {
		return telemetry.Result{Source: i.Name(), Values: values, Err: fmt.Errorf("geolocation: %w", err)}
	}
	for field, v := range map[string]string{
		telemetry.FieldCity:        geo.City,
		telemetry.FieldCountryCode: geo.CountryCode,
		telemetry.FieldISP:         geo.ISP,
	} {
		if v = strings.TrimSpace(v); v != "" {
			values[field] = v
		}
	}
	i.log.Debug("public address %s geolocated to %s, %s", ip, geo.City, geo.CountryCode)
	return telemetry.Result{Source: i.Name(), Values: values}
}

// publicIP accepts a bare address or an {"ip": "..."} document.
func (i *Identity) publicIP(ctx context.Context) (netip.Addr, error) {
	body, err := i.get(ctx, i.ipURL)
	if err != nil {
		return netip.Addr{}, err
	}
	raw := strings.TrimSpace(string(body))
	if strings.HasPrefix(raw, "{") {
		var doc struct {
			IP string `json:"ip"`
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			return netip.Addr{}, fmt.Errorf("decode: %w", err)
		}
		raw = strings.TrimSpace(doc.IP)
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid address %q", raw)
	}
	return addr.Unmap(), nil
}

type geoResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
	ISP         string `json:"isp"`
}

func (i *Identity) geolocate(ctx context.Context, ip netip.Addr) (geoResponse, error) {
	target := strings.ReplaceAll(i.geoTemplate, "{ip}", url.PathEscape(ip.String()))
	body, err := i.get(ctx, target)
	if err != nil {
		return geoResponse{}, err
	}
	var geo geoResponse
	if err := json.Unmarshal(body, &geo); err != nil {
		return geoResponse{}, fmt.Errorf("decode: %w", err)
	}
	if geo.Status != "success" {
		return geoResponse{}, fmt.Errorf("status %q %s", geo.Status, geo.Message)
	}
	return geo, nil
}

func (i *Identity) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain")
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
