package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/promosphere-api/internal/domain"
	"github.com/vfg2006/promosphere-api/pkg/apiErrors"
)

// RoleMiddleware cria um middleware que restringe o acesso com base no papel
// presente no token; allowedRoles lista os papéis com permissão para a rota
func RoleMiddleware(allowedRoles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Obter claims do usuário do contexto
			userClaims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims)

			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
				return
			}

			// Verificar se o papel do token está na lista de papéis permitidos
			isAllowed := false
			for _, role := range allowedRoles {
				if userClaims.Role == role {
					isAllowed = true
					break
				}
			}

			if !isAllowed {
				logrus.Warningf("Acesso negado para sub=%s, role=%s", userClaims.Subject, userClaims.Role)
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
				return
			}

			// Se tiver permissão, continua para o próximo handler
			next.ServeHTTP(w, r)
		})
	}
}

// OperatorOnly é um middleware que permite acesso apenas para operadores
func OperatorOnly() func(http.Handler) http.Handler {
	return RoleMiddleware([]string{domain.RoleOperator})
}

// AllRoles é um middleware que permite acesso para qualquer papel reconhecido
func AllRoles() func(http.Handler) http.Handler {
	return RoleMiddleware([]string{domain.RoleOperator, domain.RoleViewer})
}
