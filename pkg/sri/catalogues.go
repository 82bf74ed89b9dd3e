// Package sri contiene catálogos, la clave de acceso y el puerto de firma para
// comprobantes electrónicos SRI (Ecuador), Ficha Técnica de Comprobantes
// Electrónicos esquema offline v2.21.
package sri

// =============================================================================
// Tabla 3 - Tipo de comprobante (codDoc)
// =============================================================================

const (
	DocTypeFactura         = "01" // Factura
	DocTypeNotaCredito     = "04" // Nota de crédito
	DocTypeNotaDebito      = "05" // Nota de débito
	DocTypeGuiaRemision    = "06" // Guía de remisión
	DocTypeRetencion       = "07" // Comprobante de retención
)

// =============================================================================
// Tabla 4 - Ambiente y Tabla 2 - Tipo de emisión
// =============================================================================

const (
	AmbientePruebas    = "1" // Pruebas (celcer.sri.gob.ec)
	AmbienteProduccion = "2" // Producción (cel.sri.gob.ec)

	EmisionNormal = "1" // Emisión normal (esquema offline)
)

// =============================================================================
// Tabla 16/17 - Impuesto IVA: código de impuesto y código porcentaje
// =============================================================================

const (
	TaxCodeIVA = "2" // IVA (código de impuesto en <impuesto><codigo>)

	IVARate0       = "0" // 0%
	IVARate12      = "2" // 12%
	IVARate14      = "3" // 14%
	IVARate15      = "4" // 15% (vigente desde 2024)
	IVANoObjeto    = "6" // No objeto de impuesto
	IVAExento      = "7" // Exento de IVA
)

// ValidIVAPercentageCodes códigos porcentaje de IVA aceptados en líneas de factura.
var ValidIVAPercentageCodes = map[string]bool{
	IVARate0: true, IVARate12: true, IVARate14: true, IVARate15: true,
	IVANoObjeto: true, IVAExento: true,
}

// =============================================================================
// Tabla 24 - Formas de pago
// =============================================================================

const (
	PaymentCash          = "01" // Sin utilización del sistema financiero (efectivo)
	PaymentDebit         = "16" // Tarjeta de débito
	PaymentElectronic    = "17" // Dinero electrónico
	PaymentCreditCard    = "19" // Tarjeta de crédito
	PaymentBankTransfer  = "20" // Otros con utilización del sistema financiero
	PaymentEndorsement   = "21" // Endoso de títulos
)

// ValidPaymentMethodCodes códigos de forma de pago SRI aceptados.
var ValidPaymentMethodCodes = map[string]bool{
	PaymentCash: true, PaymentDebit: true, PaymentElectronic: true,
	PaymentCreditCard: true, PaymentBankTransfer: true, PaymentEndorsement: true,
}

// =============================================================================
// Tabla 6 - Tipo de identificación del comprador
// =============================================================================

const (
	IdentificationRUC           = "04" // RUC (13 dígitos)
	IdentificationCedula        = "05" // Cédula (10 dígitos)
	IdentificationPasaporte     = "06" // Pasaporte
	IdentificationConsumidor    = "07" // Consumidor final
)

// IdentificationTypeFor devuelve el código de tipo de identificación según la longitud
// del documento: 13 dígitos = RUC, 10 dígitos = cédula, otro = pasaporte.
func IdentificationTypeFor(taxID string) string {
	digits := 0
	for _, r := range taxID {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	switch digits {
	case 13:
		return IdentificationRUC
	case 10:
		return IdentificationCedula
	default:
		return IdentificationPasaporte
	}
}

// Plazo de crédito en <pagos><pago><unidadTiempo>.
const CreditTermUnit = "dias"

// =============================================================================
// Respuestas de los web services de recepción y autorización
// =============================================================================

const (
	ReceptionReceived = "RECIBIDA" // el comprobante pasó las validaciones de recepción
	ReceptionReturned = "DEVUELTA" // rechazo en recepción (estructura, clave, secuencial)

	AuthorizationAuthorized = "AUTORIZADO"
	AuthorizationRejected   = "NO AUTORIZADO"
	AuthorizationInProcess  = "EN PROCESO" // la autorización aún no resuelve; reintentar luego
)
