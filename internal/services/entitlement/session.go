package entitlement

import (
	"context"

	"github.com/magabrotheeeer/mentor-gateway/internal/models"
)

// ClientSession моделирует локальный для устройства флаг бесплатной квоты.
// Флаг меняется только через Commit, после успешной отправки.
type ClientSession struct {
	state models.ClientState
}

// NewClientSession создает сессию с заданным состоянием квоты.
func NewClientSession(state models.ClientState) *ClientSession {
	return &ClientSession{state: state}
}

// State возвращает текущее состояние квоты.
func (s *ClientSession) State() models.ClientState {
	return s.state
}

// Attempt проверяет, можно ли отправить сообщение. Состояние не меняется.
func (s *ClientSession) Attempt(ctx context.Context, e *Evaluator, identityID, email string) Decision {
	return e.Evaluate(ctx, s.state, identityID, email)
}

// Commit отмечает успешную отправку. Бесплатная квота расходуется только
// если ход был разрешён именно ею. Флаг никогда не сбрасывается обратно.
func (s *ClientSession) Commit(d Decision) {
	if d.Allowed && d.FreeGrant {
		s.state.HasUsedFreeMessage = true
	}
}
