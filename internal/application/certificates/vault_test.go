package certificates

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

// fakeCipher marca el material con un prefijo para verificar que lo que se
// persiste nunca es el material en claro.
type fakeCipher struct{}

var encPrefix = []byte("enc:")

func (fakeCipher) Encrypt(p []byte) ([]byte, error) { return append(append([]byte{}, encPrefix...), p...), nil }
func (fakeCipher) Decrypt(c []byte) ([]byte, error) {
	if !bytes.HasPrefix(c, encPrefix) {
		return nil, errors.New("material no cifrado")
	}
	return c[len(encPrefix):], nil
}

type fakeCertRepo struct{ items map[string]*entity.Certificate }

func (f *fakeCertRepo) Create(c *entity.Certificate) error { f.items[c.ID] = c; return nil }
func (f *fakeCertRepo) GetByID(id string) (*entity.Certificate, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}
func (f *fakeCertRepo) GetActive(companyID string) (*entity.Certificate, error) {
	for _, c := range f.items {
		if c.CompanyID == companyID && c.Active {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}
func (f *fakeCertRepo) List(companyID string) ([]*entity.Certificate, error) {
	var out []*entity.Certificate
	for _, c := range f.items {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCertRepo) ActivateExclusive(_ context.Context, companyID, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.ErrNotFound
	}
	for _, c := range f.items {
		if c.CompanyID == companyID {
			c.Active = c.ID == id
		}
	}
	return nil
}
func (f *fakeCertRepo) Deactivate(id string) error {
	c, ok := f.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = false
	return nil
}

// testLeaf genera un certificado autofirmado en memoria.
func testLeaf(t *testing.T, cn string, notAfter time.Time) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}
}

const goodPass = "clave-p12"

func newTestVault(t *testing.T, leaf tls.Certificate) (*Vault, *fakeCertRepo) {
	t.Helper()
	repo := &fakeCertRepo{items: map[string]*entity.Certificate{}}
	v := NewVault(repo, fakeCipher{}, logger.New(logger.Config{Env: "test", Level: "error"}))
	// Decodificador de prueba: acepta solo la contraseña correcta.
	v.decode = func(p12 []byte, passphrase string) (tls.Certificate, error) {
		if passphrase != goodPass {
			return tls.Certificate{}, errors.New("pkcs12: decryption password incorrect")
		}
		return leaf, nil
	}
	return v, repo
}

func storeInput() StoreInput {
	return StoreInput{
		CompanyID:  "c1",
		Name:       "Firma 2026",
		P12:        []byte("p12-binario"),
		Passphrase: goodPass,
	}
}

func TestStore_GuardaCifradoEInactivo(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(365*24*time.Hour))
	v, repo := newTestVault(t, leaf)

	cert, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)

	assert.Equal(t, "JUAN PEREZ", cert.SubjectCN)
	assert.False(t, cert.Active, "el certificado recién cargado queda inactivo")

	stored := repo.items[cert.ID]
	assert.True(t, bytes.HasPrefix(stored.KeyStoreEnc, encPrefix), "el .p12 se persiste cifrado")
	assert.True(t, bytes.HasPrefix(stored.PassphraseEnc, encPrefix), "la contraseña se persiste cifrada")
	assert.NotEqual(t, []byte(goodPass), stored.PassphraseEnc, "la contraseña nunca se guarda en claro")
}

func TestStore_RechazaContrasenaIncorrecta(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(time.Hour))
	v, repo := newTestVault(t, leaf)

	in := storeInput()
	in.Passphrase = "incorrecta"
	_, err := v.Store(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidKeystore)
	assert.Empty(t, repo.items, "nada se persiste si el keystore no abre")
}

func TestStore_RechazaVencido(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(-time.Hour))
	v, repo := newTestVault(t, leaf)

	_, err := v.Store(context.Background(), storeInput())
	assert.ErrorIs(t, err, domain.ErrInvalidKeystore)
	assert.Empty(t, repo.items)
}

func TestSetActive_ExactamenteUnoActivo(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(time.Hour))
	v, repo := newTestVault(t, leaf)

	a, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)
	in := storeInput()
	in.Name = "Firma 2027"
	b, err := v.Store(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, v.SetActive(context.Background(), "c1", a.ID))
	require.NoError(t, v.SetActive(context.Background(), "c1", b.ID))

	var active int
	for _, c := range repo.items {
		if c.Active {
			active++
			assert.Equal(t, b.ID, c.ID)
		}
	}
	assert.Equal(t, 1, active, "activar el segundo desactiva el primero")
}

func TestSetActive_OtraEmpresaProhibido(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(time.Hour))
	v, _ := newTestVault(t, leaf)

	cert, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)

	err = v.SetActive(context.Background(), "otra-empresa", cert.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestActiveSigningKey_SinActivo(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(time.Hour))
	v, _ := newTestVault(t, leaf)

	_, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)

	_, err = v.ActiveSigningKey(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveCertificate)
}

func TestActiveSigningKey_DevuelveLlaveUtilizable(t *testing.T) {
	leaf := testLeaf(t, "MARIA LOPEZ", time.Now().Add(time.Hour))
	v, _ := newTestVault(t, leaf)

	cert, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)
	require.NoError(t, v.SetActive(context.Background(), "c1", cert.ID))

	key, err := v.ActiveSigningKey(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, key.Leaf)
	assert.Equal(t, "MARIA LOPEZ", key.Leaf.Subject.CommonName)
	assert.NotNil(t, key.PrivateKey)
}

func TestDeactivate_DejaEmpresaSinFirma(t *testing.T) {
	leaf := testLeaf(t, "JUAN PEREZ", time.Now().Add(time.Hour))
	v, _ := newTestVault(t, leaf)

	cert, err := v.Store(context.Background(), storeInput())
	require.NoError(t, err)
	require.NoError(t, v.SetActive(context.Background(), "c1", cert.ID))
	require.NoError(t, v.Deactivate(context.Background(), "c1", cert.ID))

	_, err = v.ActiveSigningKey(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrNoActiveCertificate)
}
