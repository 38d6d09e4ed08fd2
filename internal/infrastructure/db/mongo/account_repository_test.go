package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/access-control/internal/core/domain"
)

func TestAccountDocumentMapping(t *testing.T) {
	a := domain.Account{Username: "tech1", SecretHash: "$2a$hash", Role: domain.RoleTechnician}

	doc := toDocument(a, 2)
	if doc.Username != "tech1" || doc.PasswordHash != "$2a$hash" || doc.Role != "technician" || doc.Position != 2 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	if got := fromDocument(doc); got != a {
		t.Fatalf("expected %+v, got %+v", a, got)
	}
}

var testAccounts = []domain.Account{
	{Username: "operator1", SecretHash: "h1", Role: domain.RoleOperator},
	{Username: "admin1", SecretHash: "h3", Role: domain.RoleAdmin},
}

func TestAccountRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get sorts by position", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + collectionAccounts
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "username", Value: "operator1"}, {Key: "password_hash", Value: "h1"}, {Key: "role", Value: "operator"}, {Key: "position", Value: 0}},
			bson.D{{Key: "username", Value: "admin1"}, {Key: "password_hash", Value: "h3"}, {Key: "role", Value: "admin"}, {Key: "position", Value: 1}},
		))

		repo := NewAccountRepository(mt.DB, nil, zerolog.Nop())
		got, err := repo.Get(context.Background())
		if err != nil {
			mt.Fatalf("get: %v", err)
		}
		if len(got) != 2 || got[0] != testAccounts[0] || got[1] != testAccounts[1] {
			mt.Fatalf("unexpected accounts: %+v", got)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected find, got %+v", evt)
		}
		if dir, ok := evt.Command.Lookup("sort", "position").AsInt64OK(); !ok || dir != 1 {
			mt.Fatalf("expected ascending sort on position, got %v", evt.Command.Lookup("sort"))
		}
	})

	mt.Run("put upserts then removes the rest", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		repo := NewAccountRepository(mt.DB, nil, zerolog.Nop())
		if err := repo.Put(context.Background(), testAccounts); err != nil {
			mt.Fatalf("put: %v", err)
		}

		update := mt.GetStartedEvent()
		if update == nil || update.CommandName != "update" {
			mt.Fatalf("expected update, got %+v", update)
		}
		stmts, err := update.Command.Lookup("updates").Array().Values()
		if err != nil || len(stmts) != len(testAccounts) {
			mt.Fatalf("expected %d update statements, got %d (%v)", len(testAccounts), len(stmts), err)
		}
		for i, stmt := range stmts {
			doc := stmt.Document()
			if !doc.Lookup("upsert").Boolean() {
				mt.Fatalf("statement %d is not an upsert", i)
			}
			if name := doc.Lookup("q", "username").StringValue(); name != testAccounts[i].Username {
				mt.Fatalf("statement %d filters %q, want %q", i, name, testAccounts[i].Username)
			}
			if pos := doc.Lookup("u", "position").AsInt64(); pos != int64(i) {
				mt.Fatalf("statement %d writes position %d", i, pos)
			}
		}

		del := mt.GetStartedEvent()
		if del == nil || del.CommandName != "delete" {
			mt.Fatalf("expected delete, got %+v", del)
		}
		deletes, err := del.Command.Lookup("deletes").Array().Values()
		if err != nil || len(deletes) != 1 {
			mt.Fatalf("expected one delete statement, got %d (%v)", len(deletes), err)
		}
		kept, err := deletes[0].Document().Lookup("q", "username", "$nin").Array().Values()
		if err != nil || len(kept) != 2 || kept[0].StringValue() != "operator1" || kept[1].StringValue() != "admin1" {
			mt.Fatalf("unexpected $nin list: %v (%v)", kept, err)
		}
	})

	mt.Run("put failure is a storage error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 8000, Message: "boom"}))

		repo := NewAccountRepository(mt.DB, nil, zerolog.Nop())
		if err := repo.Put(context.Background(), testAccounts); !errors.Is(err, domain.ErrStorage) {
			mt.Fatalf("expected ErrStorage, got %v", err)
		}
	})

	mt.Run("seed writes marker then accounts", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		repo := NewAccountRepository(mt.DB, testAccounts, zerolog.Nop())
		if err := repo.Seed(context.Background()); err != nil {
			mt.Fatalf("seed: %v", err)
		}

		insert := mt.GetStartedEvent()
		if insert == nil || insert.CommandName != "insert" {
			mt.Fatalf("expected insert, got %+v", insert)
		}
		if coll := insert.Command.Lookup("insert").StringValue(); coll != collectionMeta {
			mt.Fatalf("marker written to %q", coll)
		}
		if next := mt.GetStartedEvent(); next == nil || next.CommandName != "update" {
			mt.Fatalf("expected seed accounts to be written, got %+v", next)
		}
	})

	mt.Run("seed skips an already seeded database", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		repo := NewAccountRepository(mt.DB, testAccounts, zerolog.Nop())
		if err := repo.Seed(context.Background()); err != nil {
			mt.Fatalf("seed: %v", err)
		}

		if evt := mt.GetStartedEvent(); evt == nil || evt.CommandName != "insert" {
			mt.Fatalf("expected insert, got %+v", evt)
		}
		if evt := mt.GetStartedEvent(); evt != nil {
			mt.Fatalf("expected no further writes, got %s", evt.CommandName)
		}
	})
}
