package checkout

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form — адресная форма чекаута. Валидация локальная и блокирует submit
// до любого сетевого вызова.
type Form struct {
	FirstName  string `validate:"required"`
	LastName   string `validate:"required"`
	Email      string `validate:"required"`
	Line1      string `validate:"required"`
	Line2      string
	City       string `validate:"required"`
	PostalCode string `validate:"required"`
	Country    string `validate:"required"`
}

// fieldLabels — сообщения пользователю, не разработчику.
var fieldLabels = map[string]string{
	"FirstName":  "le prénom",
	"LastName":   "le nom",
	"Email":      "l'email",
	"Line1":      "l'adresse",
	"City":       "la ville",
	"PostalCode": "le code postal",
	"Country":    "le pays",
}

func (f Form) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			label := verrs[0].Field()
			if l, ok := fieldLabels[label]; ok {
				label = l
			}
			return shopapi.NewError(shopapi.KindValidation, "checkout",
				errors.Errorf("veuillez renseigner %s", label))
		}
		return shopapi.NewError(shopapi.KindValidation, "checkout", err)
	}

	email := f.NormalizedEmail()
	if strings.ContainsAny(email, " \t") || !models.EmailRe.MatchString(email) {
		return shopapi.NewError(shopapi.KindValidation, "checkout",
			errors.New("adresse email invalide"))
	}
	return nil
}

func (f Form) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(f.Email))
}

func (f Form) Address() models.Address {
	return models.Address{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		Line1:      strings.TrimSpace(f.Line1),
		Line2:      strings.TrimSpace(f.Line2),
		City:       strings.TrimSpace(f.City),
		PostalCode: strings.TrimSpace(f.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(f.Country)),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
