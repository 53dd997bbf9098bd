package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		c.Set("request_id", "req-123")
		handler(c)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestErrorCarriesFieldErrors(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, apperror.NewFieldError("paid_amount", "Insufficient balance"))
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var body struct {
		Success bool                  `json:"success"`
		Message string                `json:"message"`
		Errors  []apperror.FieldError `json:"errors"`
		Meta    Meta                  `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "Insufficient balance" {
		t.Errorf("body = %+v", body)
	}
	if len(body.Errors) != 1 || body.Errors[0].Field != "paid_amount" {
		t.Errorf("errors = %+v", body.Errors)
	}
	if body.Meta.RequestID != "req-123" {
		t.Errorf("request id = %q, want the logger's id", body.Meta.RequestID)
	}
}

func TestErrorWithoutFieldsOmitsErrors(t *testing.T) {
	w := serve(func(c *gin.Context) { Error(c, errors.New("boom")) })

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["errors"]; ok {
		t.Errorf("errors key present: %s", w.Body.String())
	}
}

func TestNoContent(t *testing.T) {
	w := serve(NoContent)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}
