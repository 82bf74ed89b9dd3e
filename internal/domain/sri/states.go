// Package sri define el grafo de estados del ciclo de vida de un comprobante
// electrónico frente al SRI. Es un grafo dirigido, no una tubería lineal:
// PENDING reintenta sobre sí mismo cuando falla la firma, RETURNED solo se
// recupera por reingreso manual a PENDING, y ANNULLED solo es alcanzable desde
// AUTHORIZED.
package sri

import (
	"fmt"

	"github.com/dvillacis/puntoventa-api/internal/domain"
)

// Estados del comprobante frente al SRI.
const (
	StatusPending    = "PENDING"    // creado, aún sin firmar
	StatusSigned     = "SIGNED"     // XML firmado, pendiente de recepción
	StatusReceived   = "RECEIVED"   // recibido por el SRI, autorización pendiente
	StatusAuthorized = "AUTHORIZED" // autorizado: comprobante con validez legal
	StatusRejected   = "REJECTED"   // rechazado: terminal
	StatusReturned   = "RETURNED"   // devuelto: documento malformado, requiere corrección manual
	StatusAnnulled   = "ANNULLED"   // anulado explícitamente tras autorización: terminal
)

// transitions enumera las aristas permitidas del grafo (§ ciclo de vida).
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusPending: true, // fallo de firma: reintentable, se reporta
		StatusSigned:  true,
	},
	StatusSigned: {
		StatusReceived: true,
		StatusRejected: true, // recepción rechazada
		StatusReturned: true, // recepción devuelta (malformado)
	},
	StatusReceived: {
		StatusAuthorized: true,
		StatusRejected:   true,
		StatusReturned:   true,
	},
	StatusReturned: {
		StatusPending: true, // solo reingreso manual, nunca reintento automático
	},
	StatusAuthorized: {
		StatusAnnulled: true,
	},
	// REJECTED y ANNULLED: terminales, sin aristas de salida
}

// CanTransition indica si la arista from→to existe en el grafo.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Transition valida la arista y devuelve el estado destino, o ErrInvalidTransition.
func Transition(from, to string) (string, error) {
	if !CanTransition(from, to) {
		return "", fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
	}
	return to, nil
}

// IsTerminal indica si un estado no tiene aristas de salida.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// IsValidStatus indica si el string corresponde a un estado conocido.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusSigned, StatusReceived,
		StatusAuthorized, StatusRejected, StatusReturned, StatusAnnulled:
		return true
	}
	return false
}
