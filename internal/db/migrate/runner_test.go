package migrate

import "testing"

func TestRun_EmptyDSN(t *testing.T) {
	if err := Run("", "up"); err == nil {
		t.Fatal("Run should fail when DSN is empty")
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	if err := Run("postgres://localhost/db", "sideways"); err == nil {
		t.Fatal("Run should fail for an unknown direction")
	}
}
