package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-board/gate"
	"github.com/diewo77/go-board/internal/metrics"
	"github.com/diewo77/go-board/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionOutcome describes what ApplyReaction did.
type ReactionOutcome string

const (
	ReactionCreated   ReactionOutcome = "created"
	ReactionSwitched  ReactionOutcome = "switched"
	ReactionUnchanged ReactionOutcome = "unchanged"
)

// ReactionEngine keeps a user's single reaction per message and the six
// message counters in step.
type ReactionEngine struct {
	db   *gorm.DB
	auth Authorizer
}

func NewReactionEngine(db *gorm.DB, auth Authorizer) *ReactionEngine {
	return &ReactionEngine{db: db, auth: auth}
}

// ApplyReaction records kind as userID's reaction on messageID and returns
// the message's count for kind afterwards. Reacting again with the same
// kind changes nothing; a different kind moves the user's vote.
func (e *ReactionEngine) ApplyReaction(ctx context.Context, userID, messageID uint, kind models.ReactionKind) (int, error) {
	if !kind.Valid() {
		return 0, ErrInvalidReactionKind
	}

	var (
		count   int
		outcome ReactionOutcome
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serialises concurrent reactions on the same message.
		var msg models.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&msg, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := authorizeMessage(ctx, e.auth, userID, gate.ActionReact, &msg); err != nil {
			return err
		}

		var existing models.Reaction
		err := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			r := models.Reaction{UserID: userID, MessageID: messageID, Type: kind}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, messageID, kind, 1); err != nil {
				return err
			}
			outcome = ReactionCreated
		case err != nil:
			return err
		case existing.Type == kind:
			outcome = ReactionUnchanged
			count = msg.Count(kind)
			return nil
		default:
			old := existing.Type
			if !old.Valid() {
				return fmt.Errorf("reaction %d has unknown kind %q", existing.ID, old)
			}
			if err := bumpCounter(tx, messageID, old, -1); err != nil {
				return err
			}
			if err := bumpCounter(tx, messageID, kind, 1); err != nil {
				return err
			}
			if err := tx.Model(&existing).Update("reaction_type", kind).Error; err != nil {
				return err
			}
			outcome = ReactionSwitched
		}

		var fresh models.Message
		if err := tx.Select("id", kind.Column()).First(&fresh, messageID).Error; err != nil {
			return err
		}
		count = fresh.Count(kind)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotAuthorized) {
			return 0, err
		}
		return 0, fmt.Errorf("apply reaction: %w", err)
	}

	metrics.Reactions.WithLabelValues(string(outcome), string(kind)).Inc()
	zap.L().Debug("reaction applied",
		zap.Uint("user_id", userID),
		zap.Uint("message_id", messageID),
		zap.String("kind", string(kind)),
		zap.String("outcome", string(outcome)),
		zap.Int("count", count))
	return count, nil
}

func bumpCounter(tx *gorm.DB, messageID uint, kind models.ReactionKind, delta int) error {
	col := kind.Column()
	return tx.Model(&models.Message{}).
		Where("id = ?", messageID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}
