//go:build integration

package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"petcare/internal/core"
)

// Integration tests require real Google Sheets credentials.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportActivity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" &&
		os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewClient(ctx, Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		Location:        time.UTC,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ref, err := client.ExportActivity(ctx, core.Activity{
		ID:       uuid.NewString(),
		PetName:  "IntegrationTest",
		Type:     core.Walk,
		Amount:   1,
		DateTime: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("ExportActivity failed: %v", err)
	}
	if !strings.Contains(ref, "!") {
		t.Errorf("expected an A1 range reference, got %q", ref)
	}
	t.Logf("Exported test row to %s", ref)
}
