package certificates

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// Cipher cifra y descifra material sensible con la llave maestra del servidor.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type keystoreDecoder func(p12 []byte, passphrase string) (tls.Certificate, error)

// Vault es la bóveda de certificados de firma. Todo .p12 se valida abriéndolo
// antes de persistir, y se guarda cifrado junto con su contraseña. El material
// en claro solo existe en memoria durante la firma.
type Vault struct {
	certs  repository.CertificateRepository
	cipher Cipher
	decode keystoreDecoder
	log    *logger.Logger
}

func NewVault(certs repository.CertificateRepository, cipher Cipher, log *logger.Logger) *Vault {
	return &Vault{certs: certs, cipher: cipher, decode: decodeP12, log: log}
}

// StoreInput carga de un certificado.
type StoreInput struct {
	CompanyID  string
	Name       string
	P12        []byte
	Passphrase string
}

// Store valida y guarda un certificado. Un .p12 ilegible o con contraseña
// incorrecta se rechaza con ErrInvalidKeystore; uno vencido también. El
// certificado queda inactivo: activar es una operación explícita.
func (v *Vault) Store(ctx context.Context, in StoreInput) (*entity.Certificate, error) {
	if in.Name == "" || len(in.P12) == 0 {
		return nil, domain.ErrInvalidInput
	}
	parsed, err := v.decode(in.P12, in.Passphrase)
	if err != nil {
		return nil, domain.ErrInvalidKeystore
	}
	leaf := parsed.Leaf
	if leaf == nil {
		return nil, domain.ErrInvalidKeystore
	}
	if time.Now().After(leaf.NotAfter) {
		return nil, domain.ErrInvalidKeystore
	}

	keyStoreEnc, err := v.cipher.Encrypt(in.P12)
	if err != nil {
		return nil, err
	}
	passEnc, err := v.cipher.Encrypt([]byte(in.Passphrase))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cert := &entity.Certificate{
		ID:            uuid.NewString(),
		CompanyID:     in.CompanyID,
		Name:          in.Name,
		KeyStoreEnc:   keyStoreEnc,
		PassphraseEnc: passEnc,
		SubjectCN:     leaf.Subject.CommonName,
		NotAfter:      leaf.NotAfter,
		Active:        false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := v.certs.Create(cert); err != nil {
		return nil, err
	}
	v.log.Info().
		Str("certificate_id", cert.ID).
		Str("subject_cn", cert.SubjectCN).
		Time("not_after", cert.NotAfter).
		Msg("certificado almacenado en la bóveda")
	return cert, nil
}

// SetActive activa un certificado y desactiva el anterior en una sola
// transacción. Un certificado vencido no puede activarse.
func (v *Vault) SetActive(ctx context.Context, companyID, id string) error {
	cert, err := v.certs.GetByID(id)
	if err != nil {
		return err
	}
	if cert.CompanyID != companyID {
		return domain.ErrForbidden
	}
	if time.Now().After(cert.NotAfter) {
		return domain.ErrInvalidKeystore
	}
	return v.certs.ActivateExclusive(ctx, companyID, id)
}

// Deactivate desactiva un certificado sin activar otro: la empresa queda sin
// firma hasta activar uno nuevo.
func (v *Vault) Deactivate(ctx context.Context, companyID, id string) error {
	cert, err := v.certs.GetByID(id)
	if err != nil {
		return err
	}
	if cert.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return v.certs.Deactivate(id)
}

// List devuelve los metadatos de los certificados de la empresa; el material
// cifrado jamás sale de la bóveda.
func (v *Vault) List(ctx context.Context, companyID string) ([]*entity.Certificate, error) {
	return v.certs.List(companyID)
}

// ActiveSigningKey descifra el certificado activo y lo abre para firmar.
// Sin certificado activo devuelve ErrNoActiveCertificate.
func (v *Vault) ActiveSigningKey(ctx context.Context, companyID string) (tls.Certificate, error) {
	cert, err := v.certs.GetActive(companyID)
	if err != nil {
		return tls.Certificate{}, err
	}
	if cert == nil {
		return tls.Certificate{}, domain.ErrNoActiveCertificate
	}
	p12, err := v.cipher.Decrypt(cert.KeyStoreEnc)
	if err != nil {
		return tls.Certificate{}, err
	}
	passphrase, err := v.cipher.Decrypt(cert.PassphraseEnc)
	if err != nil {
		return tls.Certificate{}, err
	}
	parsed, err := v.decode(p12, string(passphrase))
	if err != nil {
		return tls.Certificate{}, domain.ErrInvalidKeystore
	}
	return parsed, nil
}

// decodeP12 abre un keystore PKCS#12 y devuelve el certificado con su llave.
func decodeP12(p12 []byte, passphrase string) (tls.Certificate, error) {
	key, leaf, err := pkcs12.Decode(p12, passphrase)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}
