// Utilidades de certificado para la firma XAdES.

package signer

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pkcs12"
)

// DecodeP12 decodifica un archivo .p12/.pfx en memoria. El SRI entrega los
// certificados de firma electrónica en este formato.
func DecodeP12(data []byte, password string) (tls.Certificate, error) {
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decodificar p12: %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// CertDigestAndIssuerSerial devuelve el digest SHA-256 del certificado en
// Base64 y el emisor/serial para xades:SigningCertificate.
func CertDigestAndIssuerSerial(cert *x509.Certificate) (digestB64 string, issuerName string, serial string) {
	h := sha256.Sum256(cert.Raw)
	digestB64 = base64.StdEncoding.EncodeToString(h[:])
	issuerName = cert.Issuer.String()
	serial = cert.SerialNumber.String()
	return digestB64, issuerName, serial
}
