package tracking

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type IdentityMode int

const (
	IdentityAuthenticated IdentityMode = iota + 1
	IdentityGuest
)

func (m IdentityMode) String() string {
	switch m {
	case IdentityAuthenticated:
		return "AUTHENTICATED"
	case IdentityGuest:
		return "GUEST"
	}
	return "UNKNOWN"
}

// Identity — tagged variant, разрешается один раз на старте сессии.
// Дальше все операции матчатся по варианту и не перечитывают ambient
// auth-состояние: смена логина посреди сессии идентичность не двигает.
type Identity struct {
	Mode IdentityMode

	// Authenticated path.
	OrderID uuid.UUID

	// Guest path.
	OrderNumber string
	Email       string
}

// uuidRe — строгий канонический формат; uuid.Parse сам по себе принимает
// urn: и фигурные скобки, которые сервер не примет.
var uuidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type GuestResolver interface {
	FindByNumber(ctx context.Context, orderNumber string) (*models.GuestOrderRecord, error)
}

// resolveIdentity maps an opaque identifier to exactly one lookup path.
// Authenticated sessions must carry a UUID: account-owned orders are never
// looked up through the guest endpoint (the server rejects that anyway).
func resolveIdentity(ctx context.Context, input string, authenticated bool, guests GuestResolver) (Identity, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Identity{}, shopapi.NewError(shopapi.KindValidation, "resolve identity", errors.New("empty order identifier"))
	}

	if authenticated {
		if !uuidRe.MatchString(input) {
			return Identity{}, shopapi.NewError(shopapi.KindAuthRequired, "resolve identity",
				errors.Errorf("authenticated tracking requires an order UUID, got %q", input))
		}
		id, err := uuid.Parse(input)
		if err != nil {
			return Identity{}, shopapi.NewError(shopapi.KindAuthRequired, "resolve identity", err)
		}
		return Identity{Mode: IdentityAuthenticated, OrderID: id}, nil
	}

	rec, err := guests.FindByNumber(ctx, input)
	if err != nil {
		return Identity{}, err
	}
	if rec == nil || rec.Email == "" {
		return Identity{}, shopapi.NewError(shopapi.KindNotFound, "resolve identity",
			errors.Errorf("no guest order for %q", input))
	}
	return Identity{Mode: IdentityGuest, OrderNumber: rec.OrderNumber, Email: rec.Email}, nil
}
