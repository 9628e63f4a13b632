package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lampe2020/l2db/pkg/store"
	"github.com/lampe2020/l2db/pkg/value"
)

const testAPIKey = "test-api-key"

// Prometheus collectors register globally, so share one instance
// across the package's tests.
var testMetrics = NewMetrics()

func setupTestRouter(t *testing.T) (chi.Router, *store.Store) {
	st, err := store.New(store.Options{
		Mode:        "rw",
		Diagnostics: func(string) {},
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	r := NewRouter(st, ServerConfig{APIKey: testAPIKey}, testMetrics)
	return r, st
}

func doRequest(t *testing.T, r chi.Router, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-API-Key", testAPIKey)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}

func TestHandleHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(t, r, "GET", "/api/v1/health", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	if !response.Success {
		t.Error("Expected success to be true")
	}
}

func TestPutAndGet(t *testing.T) {
	r, _ := setupTestRouter(t)

	body, _ := json.Marshal(WriteRequest{Value: 42})
	w := doRequest(t, r, "PUT", "/api/v1/kv/answer", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, "GET", "/api/v1/kv/answer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	if !response.Success {
		t.Fatal("Expected success to be true")
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", response.Data)
	}
	if data["type"] != "int" {
		t.Errorf("Expected type int, got %v", data["type"])
	}
	if data["value"] != float64(42) {
		t.Errorf("Expected value 42, got %v", data["value"])
	}
}

func TestPutWithExplicitType(t *testing.T) {
	r, _ := setupTestRouter(t)

	body, _ := json.Marshal(WriteRequest{Value: 1, Type: "bol"})
	w := doRequest(t, r, "PUT", "/api/v1/kv/flag", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	if data["type"] != "bol" {
		t.Errorf("Expected type bol, got %v", data["type"])
	}
	if data["value"] != true {
		t.Errorf("Expected value true, got %v", data["value"])
	}
}

func TestPutRawBody(t *testing.T) {
	r, st := setupTestRouter(t)

	req := httptest.NewRequest("PUT", "/api/v1/kv/blob", bytes.NewReader([]byte{0xDE, 0xAD}))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	v, err := st.Read("blob", "")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v.Type() != value.TypeRaw {
		t.Errorf("Expected raw value, got %v", v.Type())
	}
	if !bytes.Equal(v.Bytes(), []byte{0xDE, 0xAD}) {
		t.Errorf("Unexpected payload: %v", v.Bytes())
	}
}

func TestGetMissingKey(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(t, r, "GET", "/api/v1/kv/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	if response.Success {
		t.Error("Expected success to be false")
	}
	if response.Error == "" {
		t.Error("Expected error message")
	}
}

func TestGetWithTypeQuery(t *testing.T) {
	r, _ := setupTestRouter(t)

	body, _ := json.Marshal(WriteRequest{Value: 3.7})
	doRequest(t, r, "PUT", "/api/v1/kv/pi", body)

	w := doRequest(t, r, "GET", "/api/v1/kv/pi?type=int", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	if data["value"] != float64(3) {
		t.Errorf("Expected truncated value 3, got %v", data["value"])
	}

	w = doRequest(t, r, "GET", "/api/v1/kv/pi?type=zzz", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown type, got %d", w.Code)
	}
}

func TestDelete(t *testing.T) {
	r, st := setupTestRouter(t)

	body, _ := json.Marshal(WriteRequest{Value: "gone soon"})
	doRequest(t, r, "PUT", "/api/v1/kv/victim", body)

	w := doRequest(t, r, "DELETE", "/api/v1/kv/victim", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	if st.Contains("victim") {
		t.Error("Expected key to be removed")
	}

	w = doRequest(t, r, "DELETE", "/api/v1/kv/victim", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for repeated delete, got %d", w.Code)
	}
}

func TestConvert(t *testing.T) {
	r, st := setupTestRouter(t)

	body, _ := json.Marshal(WriteRequest{Value: "123"})
	doRequest(t, r, "PUT", "/api/v1/kv/n", body)

	w := doRequest(t, r, "POST", "/api/v1/kv/n/convert/int", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	v, err := st.Read("n", "")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v.Type() != value.TypeInt {
		t.Errorf("Expected converted type int, got %v", v.Type())
	}

	// A value that cannot be parsed maps to a 400.
	body, _ = json.Marshal(WriteRequest{Value: "not a number"})
	doRequest(t, r, "PUT", "/api/v1/kv/bad", body)

	w = doRequest(t, r, "POST", "/api/v1/kv/bad/convert/int", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListKeys(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, key := range []string{"a", "b", "c"} {
		body, _ := json.Marshal(WriteRequest{Value: key})
		doRequest(t, r, "PUT", "/api/v1/kv/"+key, body)
	}

	w := doRequest(t, r, "GET", "/api/v1/kv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	data := response.Data.(map[string]interface{})
	if data["count"] != float64(3) {
		t.Errorf("Expected 3 keys, got %v", data["count"])
	}
}

func TestCleanup(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(t, r, "POST", "/api/v1/cleanup", []byte(`{"only_flag":true}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	response := decodeResponse(t, w)
	if !response.Success {
		t.Error("Expected success to be true")
	}
}

func TestFlushWithoutFile(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(t, r, "POST", "/api/v1/flush", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for store with no backing file, got %d", w.Code)
	}
}

func TestInfo(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doRequest(t, r, "GET", "/api/v1/info", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	response := decodeResponse(t, w)
	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", response.Data)
	}
	if data["version"] != "2.0.0" {
		t.Errorf("Expected version 2.0.0, got %v", data["version"])
	}
}
