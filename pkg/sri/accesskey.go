// Clave de acceso de 49 dígitos según la Ficha Técnica SRI (esquema offline).
// Estructura: fecha(8) + codDoc(2) + RUC(13) + ambiente(1) + serie(6) +
// secuencial(9) + código numérico(8) + tipo emisión(1) + dígito verificador(1).
// El dígito verificador se calcula con módulo 11 (pesos 2..7 de derecha a izquierda).

package sri

import (
	"fmt"
	"strings"
	"time"
)

// AccessKeyParams datos para generar la clave de acceso de un comprobante.
type AccessKeyParams struct {
	IssueDate    time.Time // fecha de emisión (se formatea ddmmaaaa)
	DocType      string    // codDoc, ej: "01" factura
	RUC          string    // RUC del emisor, 13 dígitos
	Environment  string    // "1" pruebas, "2" producción
	Series       string    // establecimiento + punto de emisión, 6 dígitos (ej: "001001")
	Sequential   string    // secuencial de 9 dígitos (ej: "000000123")
	NumericCode  string    // código numérico de 8 dígitos (aleatorio, fijo por comprobante)
	EmissionType string    // "1" emisión normal
}

// GenerateAccessKey construye la clave de acceso de 49 dígitos con su dígito verificador.
func GenerateAccessKey(p AccessKeyParams) (string, error) {
	if p.IssueDate.IsZero() {
		return "", fmt.Errorf("sri: fecha de emisión es obligatoria")
	}
	ruc := onlyDigits(p.RUC)
	if len(ruc) != 13 {
		return "", fmt.Errorf("sri: RUC debe tener 13 dígitos, tiene %d", len(ruc))
	}
	docType := p.DocType
	if docType == "" {
		docType = DocTypeFactura
	}
	if p.Environment != AmbientePruebas && p.Environment != AmbienteProduccion {
		return "", fmt.Errorf("sri: ambiente inválido %q (usar 1 o 2)", p.Environment)
	}
	series := onlyDigits(p.Series)
	if len(series) != 6 {
		return "", fmt.Errorf("sri: serie debe tener 6 dígitos (estab+ptoEmi), tiene %d", len(series))
	}
	seq := onlyDigits(p.Sequential)
	if len(seq) != 9 {
		return "", fmt.Errorf("sri: secuencial debe tener 9 dígitos, tiene %d", len(seq))
	}
	code := onlyDigits(p.NumericCode)
	if len(code) != 8 {
		return "", fmt.Errorf("sri: código numérico debe tener 8 dígitos, tiene %d", len(code))
	}
	emission := p.EmissionType
	if emission == "" {
		emission = EmisionNormal
	}

	base := p.IssueDate.Format("02012006") + docType + ruc + p.Environment +
		series + seq + code + emission
	if len(base) != 48 {
		return "", fmt.Errorf("sri: clave base debe tener 48 dígitos, tiene %d", len(base))
	}

	dv, err := Modulo11(base)
	if err != nil {
		return "", err
	}
	return base + fmt.Sprintf("%d", dv), nil
}

// Modulo11 calcula el dígito verificador módulo 11 de una cadena de dígitos.
// Pesos 2,3,4,5,6,7 aplicados de derecha a izquierda; 11-resto, con 11→0 y 10→1.
func Modulo11(digits string) (int, error) {
	if digits == "" {
		return 0, fmt.Errorf("sri: cadena vacía para módulo 11")
	}
	weights := [6]int{2, 3, 4, 5, 6, 7}
	sum := 0
	pos := 0
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("sri: carácter no numérico %q en clave de acceso", c)
		}
		sum += int(c-'0') * weights[pos%6]
		pos++
	}
	dv := 11 - (sum % 11)
	switch dv {
	case 11:
		return 0, nil
	case 10:
		return 1, nil
	default:
		return dv, nil
	}
}

// ValidateAccessKey verifica longitud y dígito verificador de una clave de acceso.
func ValidateAccessKey(key string) error {
	if len(key) != 49 {
		return fmt.Errorf("sri: la clave de acceso debe tener 49 dígitos, tiene %d", len(key))
	}
	dv, err := Modulo11(key[:48])
	if err != nil {
		return err
	}
	if key[48]-'0' != byte(dv) {
		return fmt.Errorf("sri: dígito verificador inválido (esperado %d)", dv)
	}
	return nil
}

// onlyDigits deja solo dígitos 0-9 (para RUC, serie y secuencial).
func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
