package changefeed

import (
	"time"

	"github.com/charmbracelet/log"

	"animemanager/pkg/models"
)

// Publisher feeds the broadcast channel without ever blocking a request.
type Publisher struct {
	ch     chan<- models.ChangeEvent
	logger *log.Logger
}

func NewPublisher(ch chan<- models.ChangeEvent, logger *log.Logger) *Publisher {
	return &Publisher{ch: ch, logger: logger}
}

func (p *Publisher) Publish(action string, a models.Anime) {
	if p == nil || p.ch == nil {
		return
	}
	evt := models.ChangeEvent{
		Action:    action,
		AnimeID:   a.ID,
		Title:     a.Title,
		Timestamp: time.Now().Unix(),
	}
	select {
	case p.ch <- evt:
	default:
		p.logger.Warn("change feed channel full, drop event", "event", evt.String())
	}
}
