package sri

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvillacis/puntoventa-api/internal/application/billing"
	sricat "github.com/dvillacis/puntoventa-api/pkg/sri"
)

// Endpoints del esquema offline. Pruebas en celcer, producción en cel.
const (
	receptionURLTest = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"
	receptionURLProd = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"

	authorizationURLTest = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"
	authorizationURLProd = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"

	nsRecepcion    = "http://ec.gob.sri.ws.recepcion"
	nsAutorizacion = "http://ec.gob.sri.ws.autorizacion"
)

// SOAPClient implementa billing.SRIClient contra los web services del SRI.
// Un fallo de red o un HTTP no-2xx se devuelve como error (el orquestador
// reintenta); una respuesta negativa del SRI llega en el resultado.
type SOAPClient struct {
	receptionURL     string
	authorizationURL string
	httpClient       *http.Client
}

// NewSOAPClient construye el cliente según el ambiente ("1" pruebas,
// "2" producción). Timeout generoso: el SRI puede tardar varios segundos.
func NewSOAPClient(environment string) *SOAPClient {
	c := &SOAPClient{
		receptionURL:     receptionURLTest,
		authorizationURL: authorizationURLTest,
		httpClient:       &http.Client{Timeout: 60 * time.Second},
	}
	if environment == sricat.AmbienteProduccion {
		c.receptionURL = receptionURLProd
		c.authorizationURL = authorizationURLProd
	}
	return c
}

var _ billing.SRIClient = (*SOAPClient)(nil)

// Submit envía el comprobante firmado al web service de recepción.
func (c *SOAPClient) Submit(ctx context.Context, signedXML []byte) (billing.ReceptionResult, error) {
	body := &validarComprobanteBody{XML: base64.StdEncoding.EncodeToString(signedXML)}
	raw, err := c.call(ctx, c.receptionURL, nsRecepcion, body)
	if err != nil {
		return billing.ReceptionResult{}, err
	}

	var env receptionResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return billing.ReceptionResult{}, fmt.Errorf("sri: parsear respuesta de recepción: %w", err)
	}
	if env.Body.Fault != nil {
		return billing.ReceptionResult{}, fmt.Errorf("sri: SOAP Fault [%s]: %s",
			env.Body.Fault.FaultCode, env.Body.Fault.FaultString)
	}
	if env.Body.Response == nil {
		return billing.ReceptionResult{}, fmt.Errorf("sri: respuesta de recepción vacía")
	}

	resp := env.Body.Response.Respuesta
	result := billing.ReceptionResult{Status: resp.Estado}
	if resp.Estado != sricat.ReceptionReceived {
		var msgs []string
		for _, comp := range resp.Comprobantes {
			for _, m := range comp.Mensajes {
				msgs = append(msgs, formatMensaje(m))
			}
		}
		result.Messages = strings.Join(msgs, "; ")
	}
	return result, nil
}

// Authorize consulta el estado de autorización por clave de acceso.
func (c *SOAPClient) Authorize(ctx context.Context, accessKey string) (billing.AuthorizationResult, error) {
	body := &autorizacionComprobanteBody{ClaveAcceso: accessKey}
	raw, err := c.call(ctx, c.authorizationURL, nsAutorizacion, body)
	if err != nil {
		return billing.AuthorizationResult{}, err
	}

	var env authorizationResponseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return billing.AuthorizationResult{}, fmt.Errorf("sri: parsear respuesta de autorización: %w", err)
	}
	if env.Body.Fault != nil {
		return billing.AuthorizationResult{}, fmt.Errorf("sri: SOAP Fault [%s]: %s",
			env.Body.Fault.FaultCode, env.Body.Fault.FaultString)
	}
	if env.Body.Response == nil {
		return billing.AuthorizationResult{}, fmt.Errorf("sri: respuesta de autorización vacía")
	}

	resp := env.Body.Response.Respuesta
	// Sin autorizaciones todavía: el SRI sigue procesando.
	if len(resp.Autorizaciones) == 0 {
		return billing.AuthorizationResult{Status: sricat.AuthorizationInProcess}, nil
	}

	auth := resp.Autorizaciones[0]
	result := billing.AuthorizationResult{
		Status: auth.Estado,
		Number: auth.NumeroAutorizacion,
	}
	if t, err := parseSRITime(auth.FechaAutorizacion); err == nil {
		result.AuthorizedAt = t
	}
	if auth.Estado != sricat.AuthorizationAuthorized {
		var msgs []string
		for _, m := range auth.Mensajes {
			msgs = append(msgs, formatMensaje(m))
		}
		result.Messages = strings.Join(msgs, "; ")
	}
	return result, nil
}

// call arma el envelope, hace el POST y devuelve el cuerpo crudo.
func (c *SOAPClient) call(ctx context.Context, url, ns string, content interface{}) ([]byte, error) {
	envelope := soapEnvelope{
		XmlnsS:  "http://schemas.xmlsoap.org/soap/envelope/",
		XmlnsEc: ns,
		Body:    soapBody{Content: content},
	}
	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("sri: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("sri: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("sri: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("sri: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB
	if err != nil {
		return nil, fmt.Errorf("sri: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sri: HTTP %d del web service", resp.StatusCode)
	}
	return raw, nil
}

func formatMensaje(m sriMensaje) string {
	msg := m.Mensaje
	if m.Identificador != "" {
		msg = m.Identificador + ": " + msg
	}
	if m.InformacionAdicional != "" {
		msg += " (" + m.InformacionAdicional + ")"
	}
	return msg
}

// parseSRITime el SRI devuelve la fecha con o sin zona horaria.
func parseSRITime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("sri: fecha de autorización no reconocida: %q", s)
}
