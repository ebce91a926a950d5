package sites

import "fmt"

// Site describes a MercadoLibre country marketplace. The authorization
// screen lives on a per-country domain, the API itself does not.
type Site struct {
	ID           string
	CountryName  string
	AuthHostname string
}

func (s Site) AuthorizationURL() string {
	return s.AuthHostname + "/authorization"
}

var supportedSites = map[string]Site{
	"MLA": {
		ID:           "MLA",
		CountryName:  "Argentina",
		AuthHostname: "https://auth.mercadolibre.com.ar",
	},
	"MLB": {
		ID:           "MLB",
		CountryName:  "Brasil",
		AuthHostname: "https://auth.mercadolivre.com.br",
	},
	"MLM": {
		ID:           "MLM",
		CountryName:  "Mexico",
		AuthHostname: "https://auth.mercadolibre.com.mx",
	},
	"MLC": {
		ID:           "MLC",
		CountryName:  "Chile",
		AuthHostname: "https://auth.mercadolibre.cl",
	},
	"MCO": {
		ID:           "MCO",
		CountryName:  "Colombia",
		AuthHostname: "https://auth.mercadolibre.com.co",
	},
}

func All() map[string]Site {
	return supportedSites
}

func Get(siteID string) (Site, error) {
	site, found := supportedSites[siteID]
	if !found {
		return Site{}, fmt.Errorf("site with id '%s' not supported", siteID)
	}

	return site, nil
}

func IsSupported(siteID string) bool {
	_, found := supportedSites[siteID]
	return found
}
