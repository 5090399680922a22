package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-board/gate"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/internal/policy"
)

type mockNonOwnable struct {
	ID uint
}

func TestOwnershipPolicy_NilResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()

	if !p.Can(ctx, 1, gate.ActionCreate, nil) {
		t.Error("Expected Can to return true for nil resource on create")
	}
}

func TestOwnershipPolicy_AuthorCanDelete(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	msg := &models.Message{AuthorID: 42}

	if !p.Can(context.Background(), 42, gate.ActionDelete, msg) {
		t.Error("Expected author to be able to delete")
	}
	if !p.Can(context.Background(), 42, gate.ActionUpdate, msg) {
		t.Error("Expected author to be able to update")
	}
}

func TestOwnershipPolicy_OthersCannotDelete(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	msg := &models.Message{AuthorID: 42}

	if p.Can(context.Background(), 99, gate.ActionDelete, msg) {
		t.Error("Expected non-author to be denied delete")
	}
	if p.Can(context.Background(), 99, gate.ActionUpdate, msg) {
		t.Error("Expected non-author to be denied update")
	}
}

func TestOwnershipPolicy_OthersCanInteract(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	msg := &models.Message{AuthorID: 42}

	for _, a := range []gate.Action{gate.ActionReply, gate.ActionReact} {
		if !p.Can(context.Background(), 99, a, msg) {
			t.Errorf("Expected %s to be open to any user", a)
		}
	}
}

func TestOwnershipPolicy_NonOwnableResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if p.Can(context.Background(), 1, gate.ActionReply, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}

func TestNewGate_RegistersMessagePolicy(t *testing.T) {
	g := policy.NewGate()
	msg := &models.Message{AuthorID: 7}

	if err := g.Authorize(context.Background(), 7, gate.ActionDelete, policy.ResourceMessage, msg); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	err := g.Authorize(context.Background(), 8, gate.ActionDelete, policy.ResourceMessage, msg)
	if !errors.Is(err, gate.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
