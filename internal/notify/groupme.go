package notify

import (
	"context"
	"fmt"
	"time"

	"llreminder/internal/config"
	"llreminder/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// GroupMe posts to a group chat through a bot.
type GroupMe struct {
	http *resty.Client
	cfg  config.GroupMeConfig
}

type groupMePost struct {
	Text  string `json:"text"`
	BotId string `json:"bot_id"`
}

func NewGroupMe(cfg config.GroupMeConfig, tel telemetry.API) GroupMe {
	client := resty.New().
		SetTimeout(time.Second * 30).
		SetHeader("Content-Type", "application/json")
	telemetry.InstrumentResty(client, "llreminder.notify.groupme", telemetry.NewScopedAPI("groupme", tel))
	return GroupMe{http: client, cfg: cfg}
}

func (GroupMe) Name() string {
	return config.TransportGroupMe
}

func (g GroupMe) Send(ctx context.Context, message string) error {
	res, err := g.http.R().
		SetContext(ctx).
		SetBody(groupMePost{Text: message, BotId: g.cfg.BotId}).
		Post(g.cfg.Url)
	if err != nil {
		return fmt.Errorf("groupme: post message: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("groupme: %s: %s", res.Status(), res.String())
	}
	return nil
}
