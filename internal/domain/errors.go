package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Inventario
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrProductDiscontinued  = errors.New("producto descontinuado: no admite movimientos")
	ErrNegativeStock        = errors.New("el ajuste dejaría el stock en negativo")

	// Ventas / facturación
	ErrEmptyCart      = errors.New("el carrito está vacío")
	ErrMissingTaxRate = errors.New("toda línea debe indicar su tarifa de impuesto")
	ErrInvalidCredit  = errors.New("venta a crédito requiere plazo en días mayor a cero")

	// Cartera y bancos
	ErrOverpayment       = errors.New("el abono excede el saldo pendiente")
	ErrInsufficientFunds = errors.New("fondos insuficientes en la cuenta")

	// Certificados de firma
	ErrNoActiveCertificate = errors.New("no hay certificado de firma activo")
	ErrInvalidKeystore     = errors.New("el archivo .p12 o su contraseña son inválidos")

	// Máquina de estados SRI
	ErrInvalidTransition = errors.New("transición de estado SRI no permitida")
)
