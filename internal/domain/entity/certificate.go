package entity

import "time"

// Certificate representa un certificado de firma digital en la bóveda.
// KeyStoreEnc y PassphraseEnc se guardan cifrados (AES-256-GCM con la llave
// maestra del servidor); el material en claro nunca se persiste ni se loguea.
// Los certificados desactivados se conservan para re-verificar firmas
// históricas: nunca se eliminan.
type Certificate struct {
	ID            string
	CompanyID     string
	Name          string // nombre descriptivo (ej: "Firma 2026")
	KeyStoreEnc   []byte // .p12 cifrado
	PassphraseEnc []byte // contraseña cifrada
	SubjectCN     string // CN del certificado, extraído al almacenar
	NotAfter      time.Time
	Active        bool // exactamente uno activo por empresa
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
