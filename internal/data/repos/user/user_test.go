package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{Username: "ada", Email: "Ada@Example.com", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	u := created[0]
	if u.ID == uuid.Nil || u.Level != 1 || u.DailyGoal != 30 {
		t.Fatalf("defaults not applied: %+v", u)
	}

	if got, err := repo.GetByID(dbc, u.ID); err != nil || got == nil || got.Username != "ada" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetByIdentifier(dbc, "ada"); err != nil || got == nil {
		t.Fatalf("GetByIdentifier username: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByIdentifier(dbc, "ada@example.com"); err != nil || got == nil {
		t.Fatalf("GetByIdentifier email: got=%v err=%v", got, err)
	}
	if ok, err := repo.UsernameExists(dbc, "ada"); err != nil || !ok {
		t.Fatalf("UsernameExists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.EmailExists(dbc, "ADA@example.com"); err != nil || !ok {
		t.Fatalf("EmailExists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.UsernameExists(dbc, "grace"); err != nil || ok {
		t.Fatalf("UsernameExists missing: ok=%v err=%v", ok, err)
	}

	if xp, err := repo.AddXP(dbc, u.ID, 50); err != nil || xp != 50 {
		t.Fatalf("AddXP: xp=%d err=%v", xp, err)
	}
	if xp, err := repo.AddXP(dbc, u.ID, 25); err != nil || xp != 75 {
		t.Fatalf("AddXP again: xp=%d err=%v", xp, err)
	}
	if _, err := repo.AddXP(dbc, uuid.New(), 5); err == nil {
		t.Fatalf("AddXP on missing user should fail")
	}
	if _, err := repo.AddXP(dbc, u.ID, -30); !errors.Is(err, ErrNegativeXP) {
		t.Fatalf("AddXP negative: want ErrNegativeXP, got %v", err)
	}

	if err := repo.UpdateFields(dbc, u.ID, map[string]interface{}{"daily_goal": 45}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := repo.GetByID(dbc, u.ID)
	if got.DailyGoal != 45 || got.XP != 75 {
		t.Fatalf("after UpdateFields: %+v", got)
	}

	if _, err := repo.Create(dbc, []*types.User{{Username: "grace", Email: "grace@example.com", Password: "pw", XP: 500}}); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	top, err := repo.TopByXP(dbc, 10)
	if err != nil || len(top) < 2 || top[0].Username != "grace" {
		t.Fatalf("TopByXP: err=%v rows=%v", err, top)
	}
}

func TestUserRepoAddXPConcurrent(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "racer")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddXP(dbctx.Context{Ctx: ctx}, u.ID, 10); err != nil {
				t.Errorf("AddXP: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(dbctx.Context{Ctx: ctx}, u.ID)
	if err != nil || got.XP != 100 {
		t.Fatalf("xp after concurrent awards: got=%v err=%v", got, err)
	}
}
