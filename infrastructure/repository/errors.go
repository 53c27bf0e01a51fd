package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Erros do contrato de acesso ao armazenamento de documentos
var (
	ErrNotFound         = errors.New("registro não encontrado")
	ErrVersionConflict  = errors.New("conflito de versão: registro alterado por outra escrita")
	ErrStoreUnavailable = errors.New("armazenamento de documentos indisponível")
)

// storeErr classifica falhas de conectividade e timeout como ErrStoreUnavailable,
// preservando os demais erros do driver com o código pq quando disponível
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w (%v)", op, ErrStoreUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Classes 08 (conexão), 53 (recursos), 57 (intervenção) e 58 (sistema)
		// indicam indisponibilidade transitória
		switch pqErr.Code.Class() {
		case "08", "53", "57", "58":
			return fmt.Errorf("%s: %w (código: %s)", op, ErrStoreUnavailable, pqErr.Code)
		}
		return fmt.Errorf("%s: erro no banco de dados: %w (código: %s)", op, pqErr, pqErr.Code)
	}

	return fmt.Errorf("%s: %w", op, err)
}
