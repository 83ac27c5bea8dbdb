package warehouse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
	"github.com/JorgeNachtigall/pandas2redshift/typemap"
)

func TestPlanColumns(t *testing.T) {
	cols := []dataset.Column{
		{Name: "id", Type: dataset.Integer},
		{Name: "name", Type: dataset.Text},
		{Name: "created", Type: dataset.Timestamp},
	}

	t.Run("inferred types in dataset order", func(t *testing.T) {
		defs, err := PlanColumns(cols, nil, 0)
		if err != nil {
			t.Fatalf("PlanColumns error: %v", err)
		}
		want := []ColumnDef{
			{Name: "id", Type: "BIGINT"},
			{Name: "name", Type: "VARCHAR(65535)"},
			{Name: "created", Type: "TIMESTAMP"},
		}
		if len(defs) != len(want) {
			t.Fatalf("got %d defs, want %d", len(defs), len(want))
		}
		for i := range want {
			if defs[i] != want[i] {
				t.Errorf("defs[%d] = %+v, want %+v", i, defs[i], want[i])
			}
		}
	})

	t.Run("explicit spec wins", func(t *testing.T) {
		defs, err := PlanColumns(cols, map[string]string{"name": "VARCHAR(40)"}, 0)
		if err != nil {
			t.Fatalf("PlanColumns error: %v", err)
		}
		if defs[1].Type != "VARCHAR(40)" {
			t.Errorf("defs[1].Type = %q, want VARCHAR(40)", defs[1].Type)
		}
	})

	t.Run("unknown spec key fails fast", func(t *testing.T) {
		_, err := PlanColumns(cols, map[string]string{"nope": "BIGINT"}, 0)
		if err == nil || !strings.Contains(err.Error(), `unknown column "nope"`) {
			t.Errorf("PlanColumns = %v, want unknown-column error", err)
		}
	})

	t.Run("unsafe type expression rejected", func(t *testing.T) {
		_, err := PlanColumns(cols, map[string]string{"name": "VARCHAR(40); DROP TABLE x"}, 0)
		if err == nil {
			t.Error("PlanColumns accepted a type expression with a semicolon")
		}
	})

	t.Run("text width threads through", func(t *testing.T) {
		defs, err := PlanColumns(cols, nil, 512)
		if err != nil {
			t.Fatalf("PlanColumns error: %v", err)
		}
		if defs[1].Type != "VARCHAR(512)" {
			t.Errorf("defs[1].Type = %q, want VARCHAR(512)", defs[1].Type)
		}
	})
}

func TestBuildStatements(t *testing.T) {
	target := Target{Schema: "analytics", Table: "events"}

	if got := BuildCreateSchema("analytics"); got != `CREATE SCHEMA IF NOT EXISTS "analytics"` {
		t.Errorf("BuildCreateSchema = %s", got)
	}

	defs := []ColumnDef{{Name: "col1", Type: "BIGINT"}, {Name: "col2", Type: "VARCHAR(65535)"}}
	wantTable := `CREATE TABLE IF NOT EXISTS "analytics"."events" ("col1" BIGINT, "col2" VARCHAR(65535))`
	if got := BuildCreateTable(target, defs); got != wantTable {
		t.Errorf("BuildCreateTable = %s\nwant %s", got, wantTable)
	}

	if got := BuildTruncate(target); got != `TRUNCATE TABLE "analytics"."events"` {
		t.Errorf("BuildTruncate = %s", got)
	}
}

func TestEnsure(t *testing.T) {
	target := Target{Schema: "analytics", Table: "events"}
	cols := []dataset.Column{
		{Name: "id", Type: dataset.Integer},
		{Name: "name", Type: dataset.Text},
	}

	t.Run("noop when ensureExists is false", func(t *testing.T) {
		exec := &captureExecer{}
		err := Ensure(context.Background(), NewGateway(exec), target, cols, nil, 0, false)
		if err != nil {
			t.Fatalf("Ensure error: %v", err)
		}
		if len(exec.stmts) != 0 {
			t.Errorf("expected no statements, got %v", exec.stmts)
		}
	})

	t.Run("issues schema then table DDL", func(t *testing.T) {
		exec := &captureExecer{}
		err := Ensure(context.Background(), NewGateway(exec), target, cols, nil, 0, true)
		if err != nil {
			t.Fatalf("Ensure error: %v", err)
		}
		if len(exec.stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %v", len(exec.stmts), exec.stmts)
		}
		if !strings.HasPrefix(exec.stmts[0], "CREATE SCHEMA IF NOT EXISTS") {
			t.Errorf("stmts[0] = %s", exec.stmts[0])
		}
		if !strings.HasPrefix(exec.stmts[1], "CREATE TABLE IF NOT EXISTS") {
			t.Errorf("stmts[1] = %s", exec.stmts[1])
		}
	})

	t.Run("rejects unsafe column name before any statement", func(t *testing.T) {
		exec := &captureExecer{}
		bad := []dataset.Column{{Name: "col; --", Type: dataset.Integer}}
		err := Ensure(context.Background(), NewGateway(exec), target, bad, nil, 0, true)
		if err == nil {
			t.Fatal("Ensure accepted an unsafe column name")
		}
		if len(exec.stmts) != 0 {
			t.Errorf("statements were issued despite validation failure: %v", exec.stmts)
		}
	})

	t.Run("unsupported semantic type surfaces UnsupportedTypeError", func(t *testing.T) {
		exec := &captureExecer{}
		bad := []dataset.Column{{Name: "blob", Type: dataset.Type(9)}}
		err := Ensure(context.Background(), NewGateway(exec), target, bad, nil, 0, true)
		var ute *typemap.UnsupportedTypeError
		if !errors.As(err, &ute) {
			t.Fatalf("Ensure = %v, want *typemap.UnsupportedTypeError", err)
		}
	})
}
