package sri

import "encoding/xml"

// Estructuras SOAP de los web services RecepcionComprobantesOffline y
// AutorizacionComprobantesOffline (esquema offline v2.21).

type soapEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	XmlnsS  string   `xml:"xmlns:soapenv,attr"`
	XmlnsEc string   `xml:"xmlns:ec,attr"`
	Header  struct{} `xml:"soapenv:Header"`
	Body    soapBody `xml:"soapenv:Body"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// validarComprobanteBody operación de recepción: el XML firmado viaja en Base64.
type validarComprobanteBody struct {
	XMLName xml.Name `xml:"ec:validarComprobante"`
	XML     string   `xml:"xml"`
}

// autorizacionComprobanteBody operación de autorización: consulta por clave de acceso.
type autorizacionComprobanteBody struct {
	XMLName    xml.Name `xml:"ec:autorizacionComprobante"`
	ClaveAcceso string  `xml:"claveAccesoComprobante"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

type receptionResponseEnvelope struct {
	Body struct {
		Response *validarComprobanteResponse `xml:"validarComprobanteResponse"`
		Fault    *soapFault                  `xml:"Fault"`
	} `xml:"Body"`
}

type validarComprobanteResponse struct {
	Respuesta respuestaRecepcion `xml:"RespuestaRecepcionComprobante"`
}

type respuestaRecepcion struct {
	Estado       string             `xml:"estado"` // RECIBIDA | DEVUELTA
	Comprobantes []comprobanteError `xml:"comprobantes>comprobante"`
}

type comprobanteError struct {
	ClaveAcceso string       `xml:"claveAcceso"`
	Mensajes    []sriMensaje `xml:"mensajes>mensaje"`
}

type sriMensaje struct {
	Identificador        string `xml:"identificador"`
	Mensaje              string `xml:"mensaje"`
	InformacionAdicional string `xml:"informacionAdicional"`
	Tipo                 string `xml:"tipo"`
}

type authorizationResponseEnvelope struct {
	Body struct {
		Response *autorizacionComprobanteResponse `xml:"autorizacionComprobanteResponse"`
		Fault    *soapFault                       `xml:"Fault"`
	} `xml:"Body"`
}

type autorizacionComprobanteResponse struct {
	Respuesta respuestaAutorizacion `xml:"RespuestaAutorizacionComprobante"`
}

type respuestaAutorizacion struct {
	ClaveAccesoConsultada string         `xml:"claveAccesoConsultada"`
	NumeroComprobantes    string         `xml:"numeroComprobantes"`
	Autorizaciones        []autorizacion `xml:"autorizaciones>autorizacion"`
}

type autorizacion struct {
	Estado             string       `xml:"estado"` // AUTORIZADO | NO AUTORIZADO | EN PROCESO
	NumeroAutorizacion string       `xml:"numeroAutorizacion"`
	FechaAutorizacion  string       `xml:"fechaAutorizacion"`
	Ambiente           string       `xml:"ambiente"`
	Comprobante        string       `xml:"comprobante"`
	Mensajes           []sriMensaje `xml:"mensajes>mensaje"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}
