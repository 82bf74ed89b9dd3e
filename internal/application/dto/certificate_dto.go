package dto

import "time"

// StoreCertificateRequest carga de un .p12. El binario y la clave llegan por
// multipart; nunca se loguean ni se devuelven.
type StoreCertificateRequest struct {
	Name       string
	P12        []byte
	Passphrase string
}

// CertificateResponse metadatos del certificado, sin material criptográfico.
type CertificateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SubjectCN string    `json:"subject_cn"`
	NotAfter  time.Time `json:"not_after"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
