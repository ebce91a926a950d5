package sites

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedSites(t *testing.T) {
	for _, siteID := range []string{"MLA", "MLB", "MLM", "MLC", "MCO"} {
		site, err := Get(siteID)
		assert.NoError(t, err)
		assert.Equal(t, siteID, site.ID)
		assert.True(t, strings.HasPrefix(site.AuthHostname, "https://"))
		assert.True(t, IsSupported(siteID))
	}
	assert.Len(t, All(), 5)
}

func TestUnsupportedSite(t *testing.T) {
	_, err := Get("MLX")
	assert.Error(t, err)
	assert.False(t, IsSupported("MLX"))
}

func TestAuthorizationURL(t *testing.T) {
	site, err := Get("MLB")
	assert.NoError(t, err)
	assert.Equal(t, "https://auth.mercadolivre.com.br/authorization", site.AuthorizationURL())
}
