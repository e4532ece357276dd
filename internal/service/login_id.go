package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
)

const (
	managerLoginPrefix = "mgr"
	loginIDAttempts    = 5
)

// loginIDGenerator derives human-readable login ids: "mgr-001" for
// managers, "<storeCode>-001" for staff keyed by their first store.
// Numbers come from the login_id_sequences counter so concurrent creations
// never share a value.
type loginIDGenerator struct {
	codes    map[string]string
	fallback string
}

func newLoginIDGenerator(cfg *config.LoginIDConfig) *loginIDGenerator {
	codes := make(map[string]string, len(cfg.StoreCodes))
	for name, code := range cfg.StoreCodes {
		codes[name] = code
	}
	fallback := cfg.FallbackCode
	if fallback == "" {
		fallback = "stf"
	}
	return &loginIDGenerator{codes: codes, fallback: fallback}
}

// storeCode maps a store name to its login prefix.
func (g *loginIDGenerator) storeCode(storeName string) string {
	if code, ok := g.codes[storeName]; ok && code != "" {
		return code
	}
	// viper lower-cases map keys read from files and env
	for name, code := range g.codes {
		if strings.EqualFold(name, storeName) && code != "" {
			return code
		}
	}
	return g.fallback
}

func formatLoginID(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// next allocates a login id inside tx. firstStore is nil for managers.
func (g *loginIDGenerator) next(ctx context.Context, tx *repository.Repository, role string, firstStore *model.Store) (string, error) {
	var (
		prefix string
		count  int64
		err    error
	)
	if role == model.RoleManager || firstStore == nil {
		prefix = managerLoginPrefix
		if role != model.RoleManager {
			prefix = g.fallback
		}
		count, err = tx.User.CountByRole(ctx, role)
	} else {
		prefix = g.storeCode(firstStore.Name)
		count, err = tx.User.CountStaffInStore(ctx, firstStore.ID)
	}
	if err != nil {
		return "", err
	}

	// the counter seeds from the existing head count the first time a
	// prefix is seen; ids already taken (manual edits, deletions) are skipped
	for i := 0; i < loginIDAttempts; i++ {
		n, err := tx.LoginID.Next(ctx, prefix, int(count)+1)
		if err != nil {
			return "", err
		}
		candidate := formatLoginID(prefix, n)
		_, err = tx.User.GetByLoginID(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrLoginIDExhausted
}
