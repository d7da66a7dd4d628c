package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextRetryable is set on the gin context when the response tells the
// client to retry, so idempotency keys are not pinned to that answer.
const ContextRetryable = "httperr.retryable"

type HTTPError struct {
	Code      string `json:"error_code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// messages holds the user-facing text per business code.
var messages = map[string]string{
	"invalid_request":          "Dados inválidos.",
	"invalid_date":             "Data inválida.",
	"invalid_date_or_time":     "Data ou hora inválida.",
	"invalid_duration":         "Duração inválida.",
	"invalid_status":           "Status inválido.",
	"invalid_state":            "Operação não permitida para o status atual.",
	"invalid_working_hours":    "Horário de funcionamento inválido.",
	"too_soon":                 "Horário inválido.",
	"outside_working_hours":    "Fora do horário de atendimento.",
	"service_not_offered":      "Serviço não oferecido por este profissional.",
	"service_unavailable":      "Serviço indisponível.",
	"service_in_use":           "Serviço já utilizado em agendamentos.",
	"invalid_price":            "Preço inválido.",
	"guest_name_required":      "Informe seu nome.",
	"comment_too_long":         "Comentário muito longo.",
	"guest_contact_required":   "Informe e-mail ou telefone.",
	"customer_required":        "Informe o cliente.",
	"appointment_not_ended":    "O atendimento ainda não terminou.",
	"invalid_manage_token":     "Token inválido.",
	"time_conflict":            "Horário indisponível. Escolha outro horário.",
	"commit_timeout":           "Não foi possível confirmar agora. Tente novamente.",
	"status_changed":           "O agendamento foi alterado. Atualize e tente novamente.",
	"request_in_progress":      "Solicitação em andamento.",
	"salon_not_found":          "Salão não encontrado.",
	"provider_not_found":       "Profissional não encontrado.",
	"service_not_found":        "Serviço não encontrado.",
	"customer_not_found":       "Cliente não encontrado.",
	"appointment_not_found":    "Agendamento não encontrado.",
	"working_hours_not_found":  "Sem horário de atendimento.",
	"internal_error":           "Erro interno. Tente novamente.",
	"missing_params":           "Parâmetros obrigatórios ausentes.",
	"missing_date":             "Data obrigatória.",
	"forbidden":                "Acesso negado.",
	"rate_limited":             "Muitas requisições. Aguarde um instante.",
	"invalid_idempotency_key":  "Idempotency-Key inválida.",
	"idempotency_key_mismatch": "Idempotency-Key reutilizada com outro pedido.",
}

func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFoundJSON(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Respond writes err as an HTTPError. Unknown errors become 500 internal_error.
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		_ = c.Error(err)
		Internal(c, "internal_error", Message("internal_error"))
		return
	}

	if be.Retryable {
		c.Set(ContextRetryable, true)
	}
	c.JSON(StatusFor(err), HTTPError{
		Code:      be.Code,
		Message:   Message(be.Code),
		Retryable: be.Retryable,
	})
}

// FromResponse rebuilds a BusinessError from a decoded error body.
func FromResponse(status int, body HTTPError) error {
	switch status {
	case http.StatusConflict:
		return BusinessError{Kind: KindConflict, Code: body.Code, Retryable: body.Retryable}
	case http.StatusNotFound:
		return BusinessError{Kind: KindNotFound, Code: body.Code}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return BusinessError{Kind: KindValidation, Code: body.Code}
	}
	return &TransportError{Status: status, Code: body.Code}
}

// TransportError is a non-business failure seen by an HTTP client.
type TransportError struct {
	Status int
	Code   string
}

func (e *TransportError) Error() string {
	return http.StatusText(e.Status) + ": " + e.Code
}
