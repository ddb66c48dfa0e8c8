package helper

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"

	"issue-blog-cms/client"
	"issue-blog-cms/models"
)

// HTTPHelper writes JSON error responses in the {"error": ...} shape the
// proxied client reads back.
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a validator with English messages registered.
func NewHTTPHelper() (*HTTPHelper, error) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &HTTPHelper{Validate: validate, Translator: trans}, nil
}

// GetStatusCode maps an error to the HTTP status a route should answer with.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrTimeout):
		return http.StatusGatewayTimeout
	}

	// Upstream statuses pass through to the caller.
	if status := client.StatusCode(err); status >= 400 {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorMessage is the client facing text for err.
func (u *HTTPHelper) ErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrConfiguration):
		return models.ErrConfiguration.Error()
	case errors.Is(err, client.ErrMalformed):
		return "API returned invalid JSON"
	}
	return err.Error()
}

// SendError answers with the status GetStatusCode picks for err.
func (u *HTTPHelper) SendError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		u.SendValidationError(c, verrs)
		return
	}
	u.SendErrorMessage(c, u.GetStatusCode(err), u.ErrorMessage(err), nil)
}

// SendFailure reports a failed upstream call as "Failed to <action>: <detail>"
// with the upstream status. Other errors fall back to SendError.
func (u *HTTPHelper) SendFailure(c *gin.Context, action string, err error) {
	var se *client.StatusError
	if !errors.As(err, &se) {
		u.SendError(c, err)
		return
	}
	detail := se.Message()
	if detail == "" {
		detail = strconv.Itoa(se.Status)
	}
	u.SendErrorMessage(c, se.Status, "Failed to "+action+": "+detail, nil)
}

// SendErrorMessage answers with an explicit status and message.
func (u *HTTPHelper) SendErrorMessage(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, models.ErrorResponse{Error: message, Details: details})
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) {
	u.SendErrorMessage(c, http.StatusBadRequest, message, nil)
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	u.SendErrorMessage(c, http.StatusUnauthorized, message, nil)
}

// SendNotFoundError ...
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string) {
	u.SendErrorMessage(c, http.StatusNotFound, message, nil)
}

// SendValidationError lists translated messages per field.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	errorResponse := map[string][]string{}
	var errorTranslation validator.ValidationErrorsTranslations
	if u.Translator != nil {
		errorTranslation = validationErrors.Translate(u.Translator)
	}
	for _, err := range validationErrors {
		errKey := Underscore(err.StructField())
		msg := errorTranslation[err.Namespace()]
		if msg == "" {
			msg = fmt.Sprintf("%s failed on the '%s' tag", err.Field(), err.Tag())
		}
		errorResponse[errKey] = append(errorResponse[errKey], msg)
	}

	u.SendErrorMessage(c, http.StatusBadRequest, "Invalid settings format", errorResponse)
}

// SendSuccess ...
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: message})
}

// Underscore converts CamelCase to snake_case: SiteName -> site_name.
func Underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
