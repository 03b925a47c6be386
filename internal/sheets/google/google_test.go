package google

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"dailyspend/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	t.Run("inline wins", func(t *testing.T) {
		got, err := loadCredentials(Options{CredentialsJSON: ` {"type":"service_account"} `, CredentialsFile: "/nope"})
		if err != nil || string(got) != `{"type":"service_account"}` {
			t.Fatalf("loadCredentials() = %q, %v", got, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCredentials(Options{CredentialsFile: filepath.Join(t.TempDir(), "key.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Fatalf("loadCredentials() err = %v", err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := loadCredentials(Options{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("loadCredentials() err = %v", err)
		}
	})
}

func TestClient_UninitializedService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Ledger"}
	ctx := context.Background()

	if _, err := c.AppendEvent(ctx, core.LedgerEvent{ID: "x"}); err == nil {
		t.Error("AppendEvent should fail without a service")
	}
	if _, err := c.HasEvent(ctx, "x"); err == nil {
		t.Error("HasEvent should fail without a service")
	}
	if _, err := c.ListEvents(ctx, "2024-06"); err == nil {
		t.Error("ListEvents should fail without a service")
	}
	if err := c.EnsureHeader(ctx); err == nil {
		t.Error("EnsureHeader should fail without a service")
	}
}
