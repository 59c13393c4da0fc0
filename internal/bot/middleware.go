package bot

import (
	"context"
	"runtime/debug"
	"time"
)

// withRecovery не дает одному кривому апдейту уронить цикл обработки.
func (b *Bot) withRecovery(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic in update handler")
		}
	}()
	fn()
}

func (b *Bot) trackActivity(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.userService.UpdateUserActivity(ctx, userID); err != nil {
		b.logger.Debug().Err(err).Int64("user_id", userID).Msg("failed to update user activity")
	}
}

func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	return b.userService.IsAdmin(ctx, userID)
}
