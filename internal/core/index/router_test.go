package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterRoutesConfiguredSectors(t *testing.T) {
	r := NewRouter([]string{"accounting", "hr", "legal"})

	h, err := r.Route("hr")
	require.NoError(t, err)
	assert.Equal(t, "hr", h.Sector)
	assert.Equal(t, "vectors_hr", h.Table)
}

func TestRouterNormalizesLookup(t *testing.T) {
	r := NewRouter([]string{"Legal", " hr "})

	for _, name := range []string{"legal", "LEGAL", "  Legal "} {
		h, err := r.Route(name)
		require.NoError(t, err, "lookup %q", name)
		assert.Equal(t, "vectors_legal", h.Table)
	}

	h, err := r.Route("hr")
	require.NoError(t, err)
	assert.Equal(t, "vectors_hr", h.Table)
}

func TestRouterUnknownSector(t *testing.T) {
	r := NewRouter([]string{"accounting", "hr"})

	_, err := r.Route("finance")
	require.ErrorIs(t, err, ErrUnknownSector)
	assert.Contains(t, err.Error(), "finance")

	_, err = r.Route("")
	require.ErrorIs(t, err, ErrUnknownSector)
}

func TestRouterSectorsPreservesOrder(t *testing.T) {
	r := NewRouter([]string{"legal", "hr", "", "accounting"})
	assert.Equal(t, []string{"legal", "hr", "accounting"}, r.Sectors())
}

func TestTableNameSanitizesIdentifier(t *testing.T) {
	r := NewRouter([]string{"r&d", "sales-emea"})

	h, err := r.Route("r&d")
	require.NoError(t, err)
	assert.Equal(t, "vectors_r_d", h.Table)

	h, err = r.Route("sales-emea")
	require.NoError(t, err)
	assert.Equal(t, "vectors_sales_emea", h.Table)
}
