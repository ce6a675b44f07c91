package location

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
)

func setupRepo(t *testing.T) *SQLRepository {
	t.Helper()
	return NewSQLRepository(dbtest.Open(t))
}

func strp(s string) *string { return &s }

func TestCreateAndGetHome(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	home := &Home{Name: "Lake House", Address: strp("1 Shore Road")}
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome: %v", err)
	}
	if home.ID == 0 {
		t.Fatal("CreateHome should assign an ID")
	}

	got, err := repo.GetHome(ctx, home.ID)
	if err != nil {
		t.Fatalf("GetHome: %v", err)
	}
	if got.Name != "Lake House" {
		t.Errorf("Name: got %q, want %q", got.Name, "Lake House")
	}
	if got.Address == nil || *got.Address != "1 Shore Road" {
		t.Errorf("Address: got %v, want %q", got.Address, "1 Shore Road")
	}
}

func TestCreateHome_NullAddress(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	home := &Home{Name: "Flat"}
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome: %v", err)
	}
	got, err := repo.GetHome(ctx, home.ID)
	if err != nil {
		t.Fatalf("GetHome: %v", err)
	}
	if got.Address != nil {
		t.Errorf("Address: got %q, want nil", *got.Address)
	}
}

func TestGetHome_NotFound(t *testing.T) {
	repo := setupRepo(t)

	if _, err := repo.GetHome(context.Background(), 99); !errors.Is(err, ErrHomeNotFound) {
		t.Errorf("expected ErrHomeNotFound, got %v", err)
	}
}

func TestListHomes(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	homes, err := repo.ListHomes(ctx)
	if err != nil {
		t.Fatalf("ListHomes: %v", err)
	}
	if homes == nil || len(homes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", homes)
	}

	for _, name := range []string{"Home 1", "Home 2", "Home 3"} {
		if err := repo.CreateHome(ctx, &Home{Name: name}); err != nil {
			t.Fatalf("CreateHome(%s): %v", name, err)
		}
	}

	homes, err = repo.ListHomes(ctx)
	if err != nil {
		t.Fatalf("ListHomes: %v", err)
	}
	if len(homes) != 3 {
		t.Fatalf("expected 3 homes, got %d", len(homes))
	}
	if homes[0].Name != "Home 1" || homes[2].Name != "Home 3" {
		t.Errorf("unexpected order: %q .. %q", homes[0].Name, homes[2].Name)
	}
}

func TestCreateRoom(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	home := &Home{Name: "Home"}
	if err := repo.CreateHome(ctx, home); err != nil {
		t.Fatalf("CreateHome: %v", err)
	}

	room := &Room{HomeID: home.ID, Name: "Kitchen"}
	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	got, err := repo.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if got.HomeID != home.ID || got.Name != "Kitchen" {
		t.Errorf("GetRoom: got %+v", got)
	}
}

func TestCreateRoom_UnknownHome(t *testing.T) {
	repo := setupRepo(t)

	err := repo.CreateRoom(context.Background(), &Room{HomeID: 404, Name: "Ghost"})
	if !errors.Is(err, database.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if kind := database.ConstraintKindOf(err); kind != database.ConstraintForeignKey {
		t.Errorf("constraint kind: got %q, want %q", kind, database.ConstraintForeignKey)
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	repo := setupRepo(t)

	if _, err := repo.GetRoom(context.Background(), 7); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestListRoomsByHome(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := &Home{Name: "A"}
	b := &Home{Name: "B"}
	for _, h := range []*Home{a, b} {
		if err := repo.CreateHome(ctx, h); err != nil {
			t.Fatalf("CreateHome: %v", err)
		}
	}
	for _, rm := range []*Room{
		{HomeID: a.ID, Name: "Living room"},
		{HomeID: a.ID, Name: "Bedroom"},
		{HomeID: b.ID, Name: "Study"},
	} {
		if err := repo.CreateRoom(ctx, rm); err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
	}

	rooms, err := repo.ListRoomsByHome(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListRoomsByHome: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms in A, got %d", len(rooms))
	}
	if rooms[0].Name != "Living room" || rooms[1].Name != "Bedroom" {
		t.Errorf("unexpected rooms: %+v", rooms)
	}

	none, err := repo.ListRoomsByHome(ctx, 999)
	if err != nil {
		t.Fatalf("ListRoomsByHome(unknown): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no rooms for unknown home, got %d", len(none))
	}
}

func TestValidateHomeAndRoom(t *testing.T) {
	h := &Home{Name: "  Villa  "}
	if err := ValidateHome(h); err != nil {
		t.Errorf("ValidateHome: %v", err)
	}
	if h.Name != "Villa" {
		t.Errorf("name not trimmed: %q", h.Name)
	}

	if err := ValidateHome(&Home{Name: ""}); err == nil {
		t.Error("empty home name should fail")
	}

	err := ValidateRoom(&Room{})
	if err == nil {
		t.Fatal("empty room should fail")
	}
	for _, field := range []string{"home_id", "name"} {
		if _, ok := fieldsOf(err)[field]; !ok {
			t.Errorf("missing field error for %s: %v", field, err)
		}
	}
}
