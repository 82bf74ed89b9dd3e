package sri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/sri"
)

// El grafo completo de aristas permitidas. Cualquier par (from, to) que no
// esté aquí debe rechazarse: el test recorre el producto cartesiano de estados.
var allowedEdges = map[[2]string]bool{
	{sri.StatusPending, sri.StatusPending}:     true,
	{sri.StatusPending, sri.StatusSigned}:      true,
	{sri.StatusSigned, sri.StatusReceived}:     true,
	{sri.StatusSigned, sri.StatusRejected}:     true,
	{sri.StatusSigned, sri.StatusReturned}:     true,
	{sri.StatusReceived, sri.StatusAuthorized}: true,
	{sri.StatusReceived, sri.StatusRejected}:   true,
	{sri.StatusReceived, sri.StatusReturned}:   true,
	{sri.StatusReturned, sri.StatusPending}:    true,
	{sri.StatusAuthorized, sri.StatusAnnulled}: true,
}

var allStatuses = []string{
	sri.StatusPending, sri.StatusSigned, sri.StatusReceived,
	sri.StatusAuthorized, sri.StatusRejected, sri.StatusReturned, sri.StatusAnnulled,
}

func TestCanTransition_GrafoCompleto(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowedEdges[[2]string{from, to}]
			assert.Equal(t, want, sri.CanTransition(from, to),
				"arista %s → %s", from, to)
		}
	}
}

// PENDING → AUTHORIZED directo es el atajo clásico que el grafo debe impedir.
func TestTransition_RechazaSaltoDirecto(t *testing.T) {
	_, err := sri.Transition(sri.StatusPending, sri.StatusAuthorized)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_AristaValida(t *testing.T) {
	to, err := sri.Transition(sri.StatusReceived, sri.StatusAuthorized)
	require.NoError(t, err)
	assert.Equal(t, sri.StatusAuthorized, to)
}

// REJECTED y ANNULLED no tienen salida; RETURNED sí (reingreso manual).
func TestIsTerminal(t *testing.T) {
	assert.True(t, sri.IsTerminal(sri.StatusRejected))
	assert.True(t, sri.IsTerminal(sri.StatusAnnulled))
	assert.False(t, sri.IsTerminal(sri.StatusReturned),
		"RETURNED se recupera por reingreso manual, no es terminal")
	assert.False(t, sri.IsTerminal(sri.StatusAuthorized),
		"AUTHORIZED admite anulación explícita")
}

func TestAnnulled_SoloDesdeAuthorized(t *testing.T) {
	for _, from := range allStatuses {
		if from == sri.StatusAuthorized {
			continue
		}
		assert.False(t, sri.CanTransition(from, sri.StatusAnnulled),
			"ANNULLED no debe ser alcanzable desde %s", from)
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, sri.IsValidStatus(s))
	}
	assert.False(t, sri.IsValidStatus("EXITOSO"))
	assert.False(t, sri.IsValidStatus(""))
}
