package dto

// CreateClientRequest alta de cliente. TaxID es cédula, RUC o pasaporte; el
// tipo de identificación SRI se deriva del largo.
type CreateClientRequest struct {
	TaxID   string `json:"tax_id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ClientResponse cliente registrado.
type ClientResponse struct {
	ID      string `json:"id"`
	TaxID   string `json:"tax_id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CreateSupplierRequest alta de proveedor.
type CreateSupplierRequest struct {
	TaxID   string `json:"tax_id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}
