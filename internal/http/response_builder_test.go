package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petcare/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		JSON(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not set")
	}
	if strings.TrimSpace(w.Body.String()) != `{"n":1}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().JSON(make(chan int)).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestValidationErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationErrorResponse(&core.ValidationError{Field: "amount", Reason: "must be greater than 0"}).Write(w)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status code = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Field != "amount" || !strings.Contains(body.Error, "greater than 0") {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name string
		b    *JSONResponseBuilder
		code int
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest},
		{"not found", NotFoundError("x"), http.StatusNotFound},
		{"internal", InternalServerError("x"), http.StatusInternalServerError},
		{"rate limited", TooManyRequestsError(), http.StatusTooManyRequests},
		{"method", MethodNotAllowedError("GET"), http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.b.StatusCode() != tt.code {
				t.Fatalf("StatusCode() = %d", tt.b.StatusCode())
			}
			w := httptest.NewRecorder()
			tt.b.Write(w)
			if w.Code != tt.code {
				t.Fatalf("written %d, want %d", w.Code, tt.code)
			}
			if !strings.Contains(w.Body.String(), `"error"`) {
				t.Fatalf("missing error envelope: %s", w.Body.String())
			}
		})
	}
}
