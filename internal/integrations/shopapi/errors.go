package shopapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an API failure the same way the caller has to react to it.
type Kind int

const (
	// KindValidation — плохой ввод, отловлен до или вместо сети.
	KindValidation Kind = iota + 1
	// KindAuthRequired — запрос требует (или запрещает) сессию: 401.
	KindAuthRequired
	// KindNotFound — заказа нет: 404 на lookup-эндпоинтах.
	KindNotFound
	// KindRateLimited — 429, пользователю говорим "попробуйте позже".
	KindRateLimited
	// KindTransient — сеть/5xx, можно ретраить в рамках бюджета опроса.
	KindTransient
	// KindFatal — 403 (и 404 в контексте трекинга): останавливаемся сразу.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthRequired:
		return "auth_required"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	}
	return "unknown"
}

type Error struct {
	Kind   Kind
	Status int
	Op     string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %s (http %d)", e.Op, e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, cause: cause}
}

// StatusError classifies a non-2xx HTTP response.
func StatusError(op string, status int) *Error {
	return &Error{Kind: classifyStatus(status), Status: status, Op: op}
}

func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindAuthRequired
	case status == http.StatusForbidden:
		return KindFatal
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindTransient
	}
}

// KindOf достаёт Kind из цепочки; сетевые и прочие неклассифицированные
// ошибки считаем transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

func IsAuthRequired(err error) bool { return KindOf(err) == KindAuthRequired }
func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsRateLimited(err error) bool  { return KindOf(err) == KindRateLimited }
func IsTransient(err error) bool    { return KindOf(err) == KindTransient }

// IsPollFatal reports whether a tracking poll must stop immediately:
// 403/404 mean the order is gone or not ours, retrying cannot help.
func IsPollFatal(err error) bool {
	k := KindOf(err)
	return k == KindFatal || k == KindNotFound || k == KindAuthRequired
}
