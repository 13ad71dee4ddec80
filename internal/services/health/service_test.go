package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusWithoutDatabase(t *testing.T) {
	ok, checks := NewService(nil).Status(context.Background())
	if !ok || checks["store"] != "memory" {
		t.Fatalf("unexpected status: %v %v", ok, checks)
	}
}

func TestStatusPingsDatabase(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		wantOK  bool
		want    string
	}{
		{name: "healthy", wantOK: true, want: "postgres"},
		{name: "unreachable", pingErr: errors.New("connection refused"), wantOK: false, want: "unavailable"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })
			mock.ExpectPing().WillReturnError(tt.pingErr)

			ok, checks := NewService(db).Status(context.Background())
			if ok != tt.wantOK || checks["store"] != tt.want {
				t.Fatalf("unexpected status: %v %v", ok, checks)
			}
		})
	}
}
