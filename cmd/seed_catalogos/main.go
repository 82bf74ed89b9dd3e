// seed_catalogos genera el script SQL con los catálogos paramétricos SRI
// (tarifas de IVA, formas de pago, descuentos) y una empresa demo con su
// usuario administrador.
//
// Uso: go run ./cmd/seed_catalogos [contraseña-admin]
// Por defecto la contraseña es "admin123" (solo para entornos de desarrollo).
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalogos.sql
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dvillacis/puntoventa-api/pkg/sri"
)

type taxRateSeed struct {
	id, code, percentageCode, percent, description string
}

type paymentMethodSeed struct {
	id, sriCode, description string
}

type discountSeed struct {
	id, percent, description string
}

func main() {
	password := "admin123"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash de contraseña: %v\n", err)
		os.Exit(1)
	}

	taxRates := []taxRateSeed{
		{"iva15", sri.TaxCodeIVA, sri.IVARate15, "15.00", "IVA 15%"},
		{"iva0", sri.TaxCodeIVA, sri.IVARate0, "0.00", "IVA 0%"},
		{"iva-exento", sri.TaxCodeIVA, sri.IVAExento, "0.00", "Exento de IVA"},
	}
	paymentMethods := []paymentMethodSeed{
		{"efectivo", sri.PaymentCash, "Efectivo"},
		{"debito", sri.PaymentDebit, "Tarjeta de débito"},
		{"electronico", sri.PaymentElectronic, "Dinero electrónico"},
		{"credito", sri.PaymentCreditCard, "Tarjeta de crédito"},
		{"transferencia", sri.PaymentBankTransfer, "Transferencia bancaria"},
		{"endoso", sri.PaymentEndorsement, "Endoso de títulos"},
	}
	discounts := []discountSeed{
		{"desc5", "5.00", "Descuento 5%"},
		{"desc10", "10.00", "Descuento 10%"},
		{"desc25", "25.00", "Liquidación 25%"},
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalogos.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	now := time.Now().UTC().Format("2006-01-02 15:04:05+00")

	out.WriteString("-- Catálogos paramétricos SRI y empresa demo\n")
	out.WriteString("-- Generado por cmd/seed_catalogos\n\n")

	out.WriteString("-- 1. Tarifas de IVA (tabla 17)\n")
	for _, t := range taxRates {
		fmt.Fprintf(out, "INSERT INTO tax_rates (id, code, percentage_code, percent, description, active, created_at)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', %s, '%s', TRUE, '%s')\n", t.id, t.code, t.percentageCode, t.percent, escapeSQL(t.description), now)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET percent = EXCLUDED.percent, description = EXCLUDED.description;\n")
	}

	out.WriteString("\n-- 2. Formas de pago (tabla 24)\n")
	for _, p := range paymentMethods {
		fmt.Fprintf(out, "INSERT INTO payment_methods (id, sri_code, description, active, created_at)\n")
		fmt.Fprintf(out, "VALUES ('%s', '%s', '%s', TRUE, '%s')\n", p.id, p.sriCode, escapeSQL(p.description), now)
		out.WriteString("ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description;\n")
	}

	out.WriteString("\n-- 3. Descuentos\n")
	for _, d := range discounts {
		fmt.Fprintf(out, "INSERT INTO discounts (id, percent, description, active, created_at)\n")
		fmt.Fprintf(out, "VALUES ('%s', %s, '%s', TRUE, '%s')\n", d.id, d.percent, escapeSQL(d.description), now)
		out.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	}

	companyID := uuid.NewString()
	userID := uuid.NewString()

	out.WriteString("\n-- 4. Empresa demo (ambiente de pruebas)\n")
	fmt.Fprintf(out, "INSERT INTO companies (id, ruc, razon_social, nombre_comercial, dir_matriz, estab, pto_emi, last_sequential, obligado_contabilidad, status, created_at, updated_at)\n")
	fmt.Fprintf(out, "VALUES ('%s', '1790012345001', 'COMERCIAL DEMO S.A.', 'Tienda Demo', 'Av. Amazonas N23-45, Quito', '001', '001', 0, FALSE, 'ACTIVE', '%s', '%s')\n", companyID, now, now)
	out.WriteString("ON CONFLICT (ruc) DO NOTHING;\n")

	out.WriteString("\n-- 5. Usuario administrador\n")
	fmt.Fprintf(out, "INSERT INTO users (id, company_id, email, password_hash, name, role, created_at, updated_at)\n")
	fmt.Fprintf(out, "SELECT '%s', id, 'admin@demo.ec', '%s', 'Administrador', 'admin', '%s', '%s'\n", userID, string(hash), now, now)
	out.WriteString("FROM companies WHERE ruc = '1790012345001'\n")
	out.WriteString("ON CONFLICT (email) DO NOTHING;\n")

	fmt.Printf("Generado %s: %d tarifas, %d formas de pago, %d descuentos\n",
		outPath, len(taxRates), len(paymentMethods), len(discounts))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
