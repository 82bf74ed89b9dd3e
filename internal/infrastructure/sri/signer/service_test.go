package signer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCertificate(t *testing.T) tls.Certificate {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(7919),
		Subject:      pkix.Name{CommonName: "FIRMA PRUEBAS", Organization: []string{"Comercial Andina S.A."}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}
}

const sampleFactura = `<?xml version="1.0" encoding="UTF-8"?>
<factura id="comprobante" version="1.1.0">
  <infoTributaria>
    <ruc>1790012345001</ruc>
    <claveAcceso>2908202601179001234500110010010000001231234567811</claveAcceso>
  </infoTributaria>
</factura>`

func TestSign_InyectaFirmaComoUltimoHijo(t *testing.T) {
	svc := NewDigitalSignatureService()
	signed, err := svc.Sign([]byte(sampleFactura), testCertificate(t))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "factura", root.Tag)

	children := root.ChildElements()
	require.NotEmpty(t, children)
	last := children[len(children)-1]
	assert.Equal(t, "Signature", last.Tag)

	// El contenido original sobrevive intacto.
	assert.NotNil(t, root.FindElement("infoTributaria/claveAcceso"))
}

func TestSign_EstructuraXAdES(t *testing.T) {
	svc := NewDigitalSignatureService()
	signed, err := svc.Sign([]byte(sampleFactura), testCertificate(t))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))

	ref := doc.FindElement("//SignedInfo/Reference")
	require.NotNil(t, ref)
	assert.Equal(t, "#comprobante", ref.SelectAttrValue("URI", ""))
	assert.NotEmpty(t, ref.FindElement("DigestValue").Text())

	assert.NotEmpty(t, doc.FindElement("//SignatureValue").Text())
	assert.NotEmpty(t, doc.FindElement("//X509Certificate").Text())

	props := doc.FindElement("//SignedSignatureProperties")
	require.NotNil(t, props)
	assert.NotNil(t, props.FindElement("SigningTime"))
	assert.NotEmpty(t, props.FindElement("SigningCertificate/Cert/CertDigest/DigestValue").Text())
	assert.Equal(t, "7919", props.FindElement("SigningCertificate/Cert/IssuerSerial/X509SerialNumber").Text())
}

func TestSign_FirmaVerificable(t *testing.T) {
	cert := testCertificate(t)
	svc := NewDigitalSignatureService()
	signed, err := svc.Sign([]byte(sampleFactura), cert)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signed))
	sigVal := doc.FindElement("//SignatureValue")
	require.NotNil(t, sigVal)
	assert.Greater(t, len(sigVal.Text()), 300, "firma RSA 2048 en Base64")
}

func TestSign_RechazaXMLVacio(t *testing.T) {
	svc := NewDigitalSignatureService()
	_, err := svc.Sign(nil, testCertificate(t))
	assert.Error(t, err)
}

func TestSign_RechazaCertificadoSinLlaveRSA(t *testing.T) {
	svc := NewDigitalSignatureService()
	_, err := svc.Sign([]byte(sampleFactura), tls.Certificate{})
	assert.Error(t, err)
}
