package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	relayErrors "github.com/agentstation/relay/pkg/errors"
)

// TestSuccess tests the Success helper function.
func TestSuccess(t *testing.T) {
	data := map[string]string{"message": "success"}
	resp := Success(data)

	if resp.Data == nil {
		t.Error("expected Data to be set")
	}
	if resp.Error != nil {
		t.Error("expected Error to be nil")
	}
}

// TestFail tests the Fail helper function.
func TestFail(t *testing.T) {
	resp := Fail("TEST_ERROR", "Test error message", "Additional details")

	if resp.Data != nil {
		t.Error("expected Data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("expected Error to be set")
	}
	if resp.Error.Code != "TEST_ERROR" {
		t.Errorf("expected Code=TEST_ERROR, got %s", resp.Error.Code)
	}
	if resp.Error.Message != "Test error message" {
		t.Errorf("expected Message=Test error message, got %s", resp.Error.Message)
	}
	if resp.Error.Details != "Additional details" {
		t.Errorf("expected Details=Additional details, got %s", resp.Error.Details)
	}
}

// TestJSON tests the JSON helper function.
func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	resp := Success(map[string]string{"test": "data"})

	JSON(w, http.StatusOK, resp)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type=application/json, got %s", contentType)
	}

	// Verify JSON is valid
	var decoded Response
	if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded.Data == nil {
		t.Error("expected decoded Data to be set")
	}
	if decoded.Error != nil {
		t.Error("expected decoded Error to be nil")
	}
}

// TestOK tests the OK helper function.
func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]int{"count": 42}

	OK(w, data)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error != nil {
		t.Error("expected no error in response")
	}
}

// TestErrorHelpers tests all error response helpers.
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name           string
		fn             func(w http.ResponseWriter)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "BadRequest",
			fn: func(w http.ResponseWriter) {
				BadRequest(w, "Invalid request", "Missing field")
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name: "NotFound",
			fn: func(w http.ResponseWriter) {
				NotFound(w, "Feed not found", "No feed named pulse")
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name: "MethodNotAllowed",
			fn: func(w http.ResponseWriter) {
				MethodNotAllowed(w, "POST")
			},
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   "METHOD_NOT_ALLOWED",
		},
		{
			name: "InternalError",
			fn: func(w http.ResponseWriter) {
				InternalError(w)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
		{
			name: "ServiceUnavailable",
			fn: func(w http.ResponseWriter) {
				ServiceUnavailable(w, "Service down")
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "SERVICE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Data != nil {
				t.Error("expected Data to be nil for error response")
			}
			if resp.Error == nil {
				t.Fatal("expected Error to be set")
			}
			if resp.Error.Code != tt.expectedCode {
				t.Errorf("expected Code=%s, got %s", tt.expectedCode, resp.Error.Code)
			}
		})
	}
}

// TestErrorFromType tests typed error mapping.
func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "NotFoundError",
			err:            &relayErrors.NotFoundError{Resource: "feed", ID: "pulse"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "InvalidArgumentError",
			err:            &relayErrors.InvalidArgumentError{Param: "key", Message: "cannot be nil"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "ValidationError",
			err:            &relayErrors.ValidationError{Field: "name", Value: "", Message: "required"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "StreamFaultError",
			err:            relayErrors.NewStreamFaultError("pulse", errors.New("boom")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
		{
			name:           "Generic error",
			err:            errors.New("generic error"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Data != nil {
				t.Error("expected Data to be nil for error response")
			}
			if resp.Error == nil {
				t.Fatal("expected Error to be set")
			}
			if resp.Error.Code != tt.expectedCode {
				t.Errorf("expected Code=%s, got %s", tt.expectedCode, resp.Error.Code)
			}
		})
	}
}

// TestErrorDetails tests error details omitempty behavior.
func TestErrorDetails(t *testing.T) {
	t.Run("with details", func(t *testing.T) {
		resp := Fail("TEST", "message", "details")
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var unmarshaled map[string]any
		if err := json.Unmarshal(data, &unmarshaled); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}

		errorField := unmarshaled["error"].(map[string]any)
		if _, ok := errorField["details"]; !ok {
			t.Error("expected 'details' field when provided")
		}
	})

	t.Run("without details", func(t *testing.T) {
		resp := Fail("TEST", "message", "")
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var unmarshaled map[string]any
		if err := json.Unmarshal(data, &unmarshaled); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}

		errorField := unmarshaled["error"].(map[string]any)
		// omitempty should exclude empty details
		if details, ok := errorField["details"]; ok && details != "" {
			t.Errorf("expected 'details' to be omitted when empty, got %v", details)
		}
	})
}
