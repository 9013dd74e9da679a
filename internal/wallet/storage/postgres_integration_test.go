//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"indy/pkg/testutil/containers"
)

func TestPostgresBackend(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &BackendSuite{newBackend: func(t *testing.T) Backend {
		if err := pg.TruncateAll(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewPostgresWithDB(pg.DB)
	}})
}

func TestPostgresBackendFromConfig(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	ctx := context.Background()
	if err := pg.TruncateAll(ctx); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	b := NewPostgres()
	config := `{"url":"` + pg.DSN + `","max_connections":2}`
	if err := b.Create(ctx, "cfg", config, "", []byte("md")); err != nil {
		t.Fatalf("create: %v", err)
	}
	st, err := b.Open(ctx, "cfg", config, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	var n int
	if err := pg.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE id = $1`, "cfg").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one wallet row, got %d", n)
	}
}
