package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestSheetsSink(serverURL string) *SheetsSink {
	return &SheetsSink{
		token:   "test-token",
		sheetID: "sheet123",
		baseURL: serverURL,
		client:  &http.Client{},
	}
}

func TestSheetsStore(t *testing.T) {
	var captured sheetsAppendBody
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{"updates":{"updatedRows":1}}`))
	}))
	defer server.Close()

	sink := newTestSheetsSink(server.URL)
	if sink.Name() != "sheets" {
		t.Errorf("Name() = %q, want sheets", sink.Name())
	}

	if err := sink.Store(sampleResult()); err != nil {
		t.Fatalf("Store() unexpected error: %v", err)
	}

	wantPath := "/sheet123/values/A2:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS"
	if gotPath != wantPath {
		t.Errorf("Store() path = %q, want %q", gotPath, wantPath)
	}

	if len(captured.Values) != 1 {
		t.Fatalf("Store() sent %d rows, want 1", len(captured.Values))
	}
	row := captured.Values[0]
	if len(row) != len(sheetHeaders) {
		t.Fatalf("Store() row has %d columns, want %d", len(row), len(sheetHeaders))
	}

	want := []interface{}{
		"2025-06-01 14:30:00",
		"Edge AI",
		"Edge AI Explained",
		"A practical guide",
		sampleResult().Content,
		float64(1520),
		"ai tools, machine learning",
		"what is edge ai",
		"Docs, Blog",
		"success",
		"",
	}
	for i, wantCell := range want {
		if row[i] != wantCell {
			t.Errorf("Store() column %d (%v) = %v, want %v", i, sheetHeaders[i], row[i], wantCell)
		}
	}
}

func TestSheetsWriteHeaders(t *testing.T) {
	var captured sheetsAppendBody
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	if err := newTestSheetsSink(server.URL).WriteHeaders(); err != nil {
		t.Fatalf("WriteHeaders() unexpected error: %v", err)
	}

	if gotMethod != "PUT" {
		t.Errorf("WriteHeaders() method = %s, want PUT", gotMethod)
	}
	if want := "/sheet123/values/A1?valueInputOption=RAW"; gotPath != want {
		t.Errorf("WriteHeaders() path = %q, want %q", gotPath, want)
	}
	if len(captured.Values) != 1 || len(captured.Values[0]) != len(sheetHeaders) {
		t.Fatalf("WriteHeaders() sent %v, want one row of %d headers", captured.Values, len(sheetHeaders))
	}
	if captured.Values[0][0] != "Timestamp" || captured.Values[0][10] != "Notes" {
		t.Errorf("WriteHeaders() row = %v, want header names", captured.Values[0])
	}
}

func TestSheetsStoreErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	err := newTestSheetsSink(server.URL).Store(sampleResult())
	if err == nil {
		t.Fatal("Store() expected error for 403, got nil")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("Store() error = %v, want status code included", err)
	}
}

func TestSheetsTestConnection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "reachable sheet", status: http.StatusOK},
		{name: "expired token", status: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"spreadsheetId":"sheet123"}`))
			}))
			defer server.Close()

			err := newTestSheetsSink(server.URL).TestConnection()
			if tt.wantErr && err == nil {
				t.Error("TestConnection() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("TestConnection() unexpected error: %v", err)
			}
			if gotPath != "/sheet123" {
				t.Errorf("TestConnection() path = %q, want /sheet123", gotPath)
			}
		})
	}
}
