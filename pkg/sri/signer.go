// Package sri: interfaz para firma digital de comprobantes XML (XAdES-BES, SRI).

package sri

import "crypto/tls"

// Signer firma un XML de comprobante y devuelve el XML con la firma inyectada
// como último hijo del elemento raíz (firma enveloped exigida por el SRI).
type Signer interface {
	// Sign toma el XML del comprobante (sin firma) y el certificado con llave
	// privada, y retorna el XML con el nodo ds:Signature incluido.
	Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
