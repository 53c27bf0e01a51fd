package domain

import "github.com/golang-jwt/jwt/v5"

// Papéis aceitos nos tokens emitidos pelo provedor de identidade externo
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Claims são as claims esperadas nos tokens de acesso à API
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
