package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims es lo que viaja dentro del token: además de los claims registrados
// lleva la empresa y el rol, para que el RBAC del middleware decida sin
// consultar la base.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"` // admin, cajero o contador
}

var (
	ErrEmptySecret   = errors.New("jwt: el secreto no puede estar vacío")
	ErrInvalidClaims = errors.New("jwt: claims inválidos")
)

// Generate firma un token HS256 con la identidad del usuario, su empresa y
// su rol. expMinutes define la vigencia desde el momento de emisión.
func Generate(secret, userID, companyID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse valida firma y vigencia y devuelve la identidad contenida en el
// token. Solo se acepta HS256: un token con otro algoritmo falla aunque la
// firma cuadre.
func Parse(secret, tokenString string) (userID, companyID, role string, err error) {
	if secret == "" {
		return "", "", "", ErrEmptySecret
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", "", "", err
	}
	if !token.Valid {
		return "", "", "", ErrInvalidClaims
	}
	return claims.UserID, claims.CompanyID, claims.Role, nil
}
